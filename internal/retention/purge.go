// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
	"github.com/cardinalhq/gallerykeeper/internal/logctx"
)

// errNoLongerDue marks an event that was restored or removed between
// candidate selection and its transaction.
var errNoLongerDue = errors.New("event no longer due for deletion")

// RunPermanentDeleteSweep deletes every trashed event whose grace period has
// passed. Storage is cleaned first on a best-effort basis; the relational
// delete is authoritative.
func (s *Sweeper) RunPermanentDeleteSweep(ctx context.Context) SweepResult {
	ctx, res := s.begin(ctx, KindPurge)
	now := s.clock.Now()
	logger := logctx.FromContext(ctx)

	candidates, err := s.store.ListPurgeCandidates(ctx, now)
	if err != nil {
		res.fail(fmt.Sprintf("select purge candidates: %v", err))
		res.Aborted = true
		return s.finish(ctx, res)
	}

	if s.objects == nil && len(candidates) > 0 {
		logger.Warn("Object storage not configured; deleting rows without storage cleanup")
	}

	for _, e := range candidates {
		if ctx.Err() != nil {
			res.fail(fmt.Sprintf("sweep interrupted: %v", ctx.Err()))
			break
		}
		if !lifecycle.PurgeDue(snapshotOf(e), now) {
			res.Skipped++
			continue
		}

		evCtx, evLogger := logctx.WithAttrs(ctx, "eventID", e.ID)
		storageErrs, err := s.purgeOne(evCtx, e, now)
		for _, se := range storageErrs {
			res.Errors = append(res.Errors, fmt.Sprintf("event %s: %s", e.ID, se))
		}
		switch {
		case errors.Is(err, errNoLongerDue):
			evLogger.Info("Event no longer due, skipping")
			res.Skipped++
		case err != nil:
			evLogger.Error("Failed to delete event", "error", err)
			res.addError(ctx, e.ID, err)
		default:
			res.Processed++
			if s.objects == nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("event %s: object storage not configured; storage cleanup skipped", e.ID))
			}
			evLogger.Info("Permanently deleted event", "storageErrors", len(storageErrs))
		}
	}

	return s.finish(ctx, res)
}

func (s *Sweeper) purgeOne(ctx context.Context, e gallerydb.Event, now time.Time) ([]string, error) {
	// Re-read before touching storage so a restore that raced the candidate
	// query does not lose its media.
	current, err := s.store.GetEvent(ctx, e.ID)
	if gallerydb.IsNotFound(err) {
		return nil, errNoLongerDue
	}
	if err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}
	if !lifecycle.PurgeDue(snapshotOf(current), now) {
		return nil, errNoLongerDue
	}

	storageErrs, storageMeta := s.cleanEventStorage(ctx, current)

	err = s.store.ExecTx(ctx, func(q gallerydb.Querier) error {
		locked, err := q.LockEvent(ctx, e.ID)
		if gallerydb.IsNotFound(err) {
			return errNoLongerDue
		}
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}
		if !lifecycle.PurgeDue(snapshotOf(locked), now) {
			return errNoLongerDue
		}

		meta := audit.EventMetadata(locked)
		for k, v := range storageMeta {
			meta[k] = v
		}
		if _, err := audit.Append(ctx, q, audit.Entry{
			EventID:  e.ID,
			Action:   audit.ActionDeleted,
			Reason:   string(lifecycle.ReasonGraceElapsed),
			Metadata: meta,
			At:       now,
		}); err != nil {
			return err
		}

		if _, err := q.DeleteGuestbookEntriesByEvent(ctx, e.ID); err != nil {
			return fmt.Errorf("delete guestbook entries: %w", err)
		}
		if _, err := q.DeleteUploadsByEvent(ctx, e.ID); err != nil {
			return fmt.Errorf("delete uploads: %w", err)
		}
		if _, err := q.DeleteAlbumsByEvent(ctx, e.ID); err != nil {
			return fmt.Errorf("delete albums: %w", err)
		}
		if _, err := q.DeleteEvent(ctx, e.ID); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return storageErrs, err
	}

	transitionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(audit.ActionDeleted)),
		attribute.String("reason", string(lifecycle.ReasonGraceElapsed)),
	))
	return storageErrs, nil
}

// cleanEventStorage removes the event prefix and then each upload URL's key
// individually, in case the listing missed objects. Failures are returned
// for the sweep's error list and never stop the relational delete.
func (s *Sweeper) cleanEventStorage(ctx context.Context, e gallerydb.Event) ([]string, map[string]any) {
	if s.objects == nil {
		return nil, map[string]any{"storage_cleanup": "skipped"}
	}
	logger := logctx.FromContext(ctx)

	var failures []string
	prefix := s.objects.EventPrefix(e.ID)
	report := s.objects.PurgePrefix(ctx, prefix)
	if report.Err != nil {
		failures = append(failures, fmt.Sprintf("purge %s: %v", prefix, report.Err))
	}
	if len(report.Failed) > 0 {
		failures = append(failures, fmt.Sprintf("purge %s: %d objects not deleted", prefix, len(report.Failed)))
	}

	singleFailures := 0
	urls, err := s.store.ListUploadURLsByEvent(ctx, e.ID)
	if err != nil {
		failures = append(failures, fmt.Sprintf("list upload urls: %v", err))
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, u := range urls {
		key, ok := s.objects.KeyForURL(u)
		if !ok {
			failures = append(failures, fmt.Sprintf("cannot resolve storage key for %q", u))
			continue
		}
		if !seen.Add(key) {
			continue
		}
		if err := s.objects.DeleteKey(ctx, key); err != nil {
			singleFailures++
			failures = append(failures, fmt.Sprintf("delete %s: %v", key, err))
		}
	}

	if len(failures) > 0 {
		logger.Warn("Storage cleanup incomplete", "failures", len(failures), "prefix", prefix)
	}
	return failures, map[string]any{
		"storage_listed":   report.Listed,
		"storage_deleted":  report.Deleted,
		"storage_failures": len(report.Failed) + singleFailures,
	}
}

// PlanPurge lists the events RunPermanentDeleteSweep would delete now.
func (s *Sweeper) PlanPurge(ctx context.Context) ([]Planned, error) {
	now := s.clock.Now()
	candidates, err := s.store.ListPurgeCandidates(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("select purge candidates: %w", err)
	}
	var out []Planned
	for _, e := range candidates {
		if !lifecycle.PurgeDue(snapshotOf(e), now) {
			continue
		}
		out = append(out, Planned{
			EventID:  e.ID,
			UserID:   e.UserID,
			Name:     e.Name,
			Plan:     e.Plan,
			Reason:   string(lifecycle.ReasonGraceElapsed),
			DeleteAt: *e.DeleteAt,
		})
	}
	return out, nil
}
