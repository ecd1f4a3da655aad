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

// Package audit writes and reads the deletion_events trail. Records are
// insert-only and keep the event id inside their metadata so the history
// outlives the event row.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
)

type Action string

const (
	ActionTrashed  Action = "trashed"
	ActionRestored Action = "restored"
	ActionDeleted  Action = "deleted"
)

// metadataEventIDKey is also indexed in the schema.
const metadataEventIDKey = "event_id"

var recordsWritten metric.Int64Counter

func init() {
	meter := otel.Meter("github.com/cardinalhq/gallerykeeper/internal/audit")

	var err error
	recordsWritten, err = meter.Int64Counter(
		"gallerykeeper.audit.records",
		metric.WithDescription("Number of deletion audit records written"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create audit.records counter: %w", err))
	}
}

// Appender is the write half of the store used here; any gallerydb.Querier,
// including one bound to a transaction, satisfies it.
type Appender interface {
	InsertDeletionEvent(ctx context.Context, arg gallerydb.InsertDeletionEventParams) error
}

type Reader interface {
	ListDeletionEventsByEvent(ctx context.Context, eventID uuid.UUID) ([]gallerydb.DeletionEvent, error)
}

// Entry is one audit record to be written.
type Entry struct {
	EventID  uuid.UUID
	Action   Action
	Reason   string
	Metadata map[string]any
	At       time.Time
}

// Append writes e and returns the new record id.
func Append(ctx context.Context, q Appender, e Entry) (uuid.UUID, error) {
	meta := maps.Clone(e.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	meta[metadataEventIDKey] = e.EventID.String()

	raw, err := json.Marshal(meta)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal audit metadata: %w", err)
	}

	id := uuid.New()
	eventID := e.EventID
	if err := q.InsertDeletionEvent(ctx, gallerydb.InsertDeletionEventParams{
		ID:        id,
		EventID:   &eventID,
		Action:    string(e.Action),
		Reason:    e.Reason,
		Metadata:  raw,
		CreatedAt: e.At,
	}); err != nil {
		return uuid.Nil, fmt.Errorf("insert %s audit record for event %s: %w", e.Action, e.EventID, err)
	}

	recordsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(e.Action))))
	return id, nil
}

// EventMetadata captures the event fields worth keeping after the row is
// gone.
func EventMetadata(e gallerydb.Event) map[string]any {
	meta := map[string]any{
		"user_id":      e.UserID,
		"name":         e.Name,
		"plan":         e.Plan,
		"is_published": e.IsPublished,
		"created_at":   e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.OrganizationID != nil {
		meta["organization_id"] = *e.OrganizationID
	}
	if e.DownloadWindowEnd != nil {
		meta["download_window_end"] = e.DownloadWindowEnd.UTC().Format(time.RFC3339)
	}
	if e.TrashedAt != nil {
		meta["trashed_at"] = e.TrashedAt.UTC().Format(time.RFC3339)
	}
	if e.DeleteAt != nil {
		meta["delete_at"] = e.DeleteAt.UTC().Format(time.RFC3339)
	}
	return meta
}

// Record is a stored audit entry.
type Record struct {
	ID        uuid.UUID      `json:"id" yaml:"id"`
	EventID   uuid.UUID      `json:"event_id" yaml:"event_id"`
	Action    Action         `json:"action" yaml:"action"`
	Reason    string         `json:"reason" yaml:"reason"`
	Metadata  map[string]any `json:"metadata" yaml:"metadata"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	// Detached is set once the event row has been removed.
	Detached bool `json:"detached" yaml:"detached"`
}

// History returns every record for the event, oldest first, including those
// written before the event row was deleted.
func History(ctx context.Context, q Reader, eventID uuid.UUID) ([]Record, error) {
	rows, err := q.ListDeletionEventsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list audit records for event %s: %w", eventID, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		var meta map[string]any
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &meta); err != nil {
				return nil, fmt.Errorf("decode metadata of audit record %s: %w", row.ID, err)
			}
		}
		records = append(records, Record{
			ID:        row.ID,
			EventID:   eventID,
			Action:    Action(row.Action),
			Reason:    row.Reason,
			Metadata:  meta,
			CreatedAt: row.CreatedAt,
			Detached:  row.EventID == nil,
		})
	}
	return records, nil
}
