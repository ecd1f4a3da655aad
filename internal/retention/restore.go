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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
	"github.com/cardinalhq/gallerykeeper/internal/logctx"
)

type RestoreResult struct {
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	// Err carries the sentinel for errors.Is checks.
	Err error `json:"-" yaml:"-"`
}

func restoreFailure(err error) RestoreResult {
	return RestoreResult{Error: err.Error(), Err: err}
}

// RestoreEvent moves a trashed event back to active. Only the owner may
// restore; organization members cannot. Nothing is written on failure.
func (s *Sweeper) RestoreEvent(ctx context.Context, eventID uuid.UUID, userID string) RestoreResult {
	ctx, logger := logctx.WithAttrs(ctx, "eventID", eventID, "userID", userID)

	e, err := s.store.GetEvent(ctx, eventID)
	if gallerydb.IsNotFound(err) {
		return restoreFailure(ErrEventNotFound)
	}
	if err != nil {
		return restoreFailure(fmt.Errorf("load event: %w", err))
	}
	if err := lifecycle.CheckRestore(snapshotOf(e)); err != nil {
		return restoreFailure(err)
	}
	if e.UserID != userID {
		return restoreFailure(ErrNotOwner)
	}

	now := s.clock.Now()
	err = s.store.ExecTx(ctx, func(q gallerydb.Querier) error {
		n, err := q.RestoreEvent(ctx, gallerydb.RestoreEventParams{UpdatedAt: now, ID: eventID})
		if err != nil {
			return fmt.Errorf("restore event: %w", err)
		}
		if n == 0 {
			// Deleted or restored since it was loaded.
			return lifecycle.ErrNotTrashed
		}

		meta := audit.EventMetadata(e)
		meta["restored_by"] = userID
		_, err = audit.Append(ctx, q, audit.Entry{
			EventID:  eventID,
			Action:   audit.ActionRestored,
			Reason:   string(lifecycle.ReasonOwnerRestore),
			Metadata: meta,
			At:       now,
		})
		return err
	})
	if err != nil {
		if !errors.Is(err, lifecycle.ErrNotTrashed) {
			logger.Error("Failed to restore event", "error", err)
		}
		return restoreFailure(err)
	}

	transitionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(audit.ActionRestored)),
		attribute.String("reason", string(lifecycle.ReasonOwnerRestore)),
	))
	logger.Info("Restored event")
	return RestoreResult{Success: true}
}
