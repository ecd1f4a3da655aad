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
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
	"github.com/cardinalhq/gallerykeeper/internal/logctx"
)

func (s *Sweeper) trashCandidates(ctx context.Context, now time.Time) ([]gallerydb.Event, error) {
	return s.store.ListTrashCandidates(ctx, gallerydb.ListTrashCandidatesParams{
		Now:               now,
		FreePlan:          s.policy.FreePlan,
		FreeCreatedBefore: s.policy.FreeCreatedBefore(now),
	})
}

// RunTrashSweep moves every active event whose retention has lapsed to the
// trash. Each event is handled in its own transaction; a failure is recorded
// and the sweep continues.
func (s *Sweeper) RunTrashSweep(ctx context.Context) SweepResult {
	ctx, res := s.begin(ctx, KindTrash)
	now := s.clock.Now()
	logger := logctx.FromContext(ctx)

	candidates, err := s.trashCandidates(ctx, now)
	if err != nil {
		res.fail(fmt.Sprintf("select trash candidates: %v", err))
		res.Aborted = true
		return s.finish(ctx, res)
	}

	for _, e := range candidates {
		if ctx.Err() != nil {
			res.fail(fmt.Sprintf("sweep interrupted: %v", ctx.Err()))
			break
		}

		// The SQL prefilter is only a hint; the state machine decides.
		decision := s.policy.EvaluateTrash(snapshotOf(e), now)
		if !decision.Due {
			res.Skipped++
			continue
		}

		transitioned, err := s.trashOne(ctx, e, decision, now)
		if err != nil {
			logger.Error("Failed to trash event", "eventID", e.ID, "error", err)
			res.addError(ctx, e.ID, err)
			continue
		}
		if !transitioned {
			logger.Info("Event already transitioned, skipping", "eventID", e.ID)
			res.Skipped++
			continue
		}
		res.Processed++
		logger.Info("Trashed event", "eventID", e.ID, "reason", decision.Reason())
	}

	return s.finish(ctx, res)
}

func (s *Sweeper) trashOne(ctx context.Context, e gallerydb.Event, d lifecycle.Decision, now time.Time) (bool, error) {
	trashedAt, deleteAt := s.policy.TrashTimes(now)

	transitioned := false
	err := s.store.ExecTx(ctx, func(q gallerydb.Querier) error {
		n, err := q.TrashEvent(ctx, gallerydb.TrashEventParams{
			TrashedAt: trashedAt,
			DeleteAt:  deleteAt,
			UpdatedAt: now,
			ID:        e.ID,
		})
		if err != nil {
			return fmt.Errorf("trash event: %w", err)
		}
		if n == 0 {
			return nil
		}

		after := e
		after.Status = string(lifecycle.StatusTrashed)
		after.TrashedAt = &trashedAt
		after.DeleteAt = &deleteAt
		if _, err := audit.Append(ctx, q, audit.Entry{
			EventID:  e.ID,
			Action:   audit.ActionTrashed,
			Reason:   d.Reason(),
			Metadata: audit.EventMetadata(after),
			At:       now,
		}); err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if transitioned {
		transitionCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", string(audit.ActionTrashed)),
			attribute.String("reason", d.Reason()),
		))
	}
	return transitioned, nil
}

// PlanTrash lists what RunTrashSweep would do now, without changing anything.
func (s *Sweeper) PlanTrash(ctx context.Context) ([]Planned, error) {
	now := s.clock.Now()
	candidates, err := s.trashCandidates(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("select trash candidates: %w", err)
	}
	_, deleteAt := s.policy.TrashTimes(now)

	var out []Planned
	for _, e := range candidates {
		d := s.policy.EvaluateTrash(snapshotOf(e), now)
		if !d.Due {
			continue
		}
		out = append(out, Planned{
			EventID:  e.ID,
			UserID:   e.UserID,
			Name:     e.Name,
			Plan:     e.Plan,
			Reason:   d.Reason(),
			DeleteAt: deleteAt,
		})
	}
	return out, nil
}
