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

// Package retention moves events through their lifecycle: trashing events
// whose retention has lapsed, permanently deleting them once the grace period
// is over, and restoring trashed events at the owner's request.
package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/internal/clock"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
	"github.com/cardinalhq/gallerykeeper/internal/idgen"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
	"github.com/cardinalhq/gallerykeeper/internal/logctx"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotOwner      = errors.New("only the event owner can restore it")
)

// ObjectStore is the storage cleanup surface; *cloudstorage.Gateway
// implements it.
type ObjectStore interface {
	EventPrefix(eventID uuid.UUID) string
	PurgePrefix(ctx context.Context, prefix string) cloudstorage.PurgeReport
	KeyForURL(url string) (string, bool)
	DeleteKey(ctx context.Context, key string) error
}

var _ ObjectStore = (*cloudstorage.Gateway)(nil)

type Sweeper struct {
	store   gallerydb.StoreFull
	objects ObjectStore
	policy  lifecycle.Policy
	clock   clock.Clock
	runID   func() string
}

type Option func(*Sweeper)

func WithClock(c clock.Clock) Option {
	return func(s *Sweeper) {
		s.clock = c
	}
}

func WithRunIDs(next func() string) Option {
	return func(s *Sweeper) {
		s.runID = next
	}
}

// New builds a Sweeper. objects may be nil when storage is not configured;
// storage cleanup is then skipped with a warning.
func New(store gallerydb.StoreFull, objects ObjectStore, policy lifecycle.Policy, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:   store,
		objects: objects,
		policy:  policy,
		clock:   clock.Real{},
		runID:   idgen.NextBase32ID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	KindTrash = "trash"
	KindPurge = "purge"
)

// SweepResult summarises one sweep run. Errors lists every failure,
// including storage cleanup failures for events whose rows were deleted.
// Success is false only when the run aborted or an event's transaction
// failed; storage failures alone leave it true.
type SweepResult struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Kind       string    `json:"kind" yaml:"kind"`
	Success    bool      `json:"success" yaml:"success"`
	Processed  int       `json:"processed" yaml:"processed"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Errors     []string  `json:"errors" yaml:"errors"`
	Warnings   []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Aborted    bool      `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	failures int
}

// fail records a failure that makes the run unsuccessful.
func (r *SweepResult) fail(msg string) {
	r.Errors = append(r.Errors, msg)
	r.failures++
}

func (r *SweepResult) addError(ctx context.Context, eventID uuid.UUID, err error) {
	r.fail(fmt.Sprintf("event %s: %v", eventID, err))
	sweepErrorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", r.Kind)))
}

func (s *Sweeper) begin(ctx context.Context, kind string) (context.Context, *SweepResult) {
	res := &SweepResult{
		RunID:     s.runID(),
		Kind:      kind,
		StartedAt: s.clock.Now(),
		Errors:    []string{},
	}
	ctx, _ = logctx.WithAttrs(ctx, "sweep", kind, "runID", res.RunID)
	return ctx, res
}

func (s *Sweeper) finish(ctx context.Context, res *SweepResult) SweepResult {
	res.FinishedAt = s.clock.Now()
	res.Success = res.failures == 0
	sweepDuration.Record(ctx, res.FinishedAt.Sub(res.StartedAt).Seconds(),
		metric.WithAttributes(attribute.String("kind", res.Kind), attribute.Bool("success", res.Success)))
	logctx.FromContext(ctx).Info("Sweep finished",
		"processed", res.Processed,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings))
	return *res
}

func snapshotOf(e gallerydb.Event) lifecycle.Snapshot {
	return lifecycle.Snapshot{
		Status:            lifecycle.Status(e.Status),
		Plan:              e.Plan,
		IsPublished:       e.IsPublished,
		DownloadWindowEnd: e.DownloadWindowEnd,
		CreatedAt:         e.CreatedAt,
		TrashedAt:         e.TrashedAt,
		DeleteAt:          e.DeleteAt,
	}
}

// Planned is a transition a sweep would perform.
type Planned struct {
	EventID  uuid.UUID `json:"event_id" yaml:"event_id"`
	UserID   string    `json:"user_id" yaml:"user_id"`
	Name     string    `json:"name" yaml:"name"`
	Plan     string    `json:"plan" yaml:"plan"`
	Reason   string    `json:"reason" yaml:"reason"`
	DeleteAt time.Time `json:"delete_at" yaml:"delete_at"`
}
