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

// Package sweeper runs the retention sweeps on a fixed period and reports
// their outcome through the health check server.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/internal/healthcheck"
	"github.com/cardinalhq/gallerykeeper/internal/retention"
)

var sweepRunCounter metric.Int64Counter

func init() {
	meter := otel.Meter("github.com/cardinalhq/gallerykeeper/cmd/sweeper")

	var err error
	sweepRunCounter, err = meter.Int64Counter(
		"gallerykeeper.sweeper.runs_total",
		metric.WithDescription("Count of sweep runs by kind and outcome"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create runs_total counter: %w", err))
	}
}

// Sweeps is the part of retention.Sweeper the daemon drives.
type Sweeps interface {
	RunTrashSweep(ctx context.Context) retention.SweepResult
	RunPermanentDeleteSweep(ctx context.Context) retention.SweepResult
}

var _ Sweeps = (*retention.Sweeper)(nil)

type sweeper struct {
	sweeps     Sweeps
	health     *healthcheck.Server
	period     time.Duration
	runTimeout time.Duration
}

// New builds the daemon. health may be nil.
func New(sweeps Sweeps, health *healthcheck.Server, period, runTimeout time.Duration) *sweeper {
	return &sweeper{
		sweeps:     sweeps,
		health:     health,
		period:     period,
		runTimeout: runTimeout,
	}
}

func (cmd *sweeper) Run(doneCtx context.Context) error {
	ctx, cancel := context.WithCancel(doneCtx)
	defer cancel()

	slog.Info("Starting sweeper",
		slog.Duration("period", cmd.period),
		slog.Duration("runTimeout", cmd.runTimeout))

	if cmd.health != nil {
		cmd.health.SetStatus(healthcheck.StatusHealthy)
	}

	err := periodicLoop(ctx, cmd.period, cmd.runOnce)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runOnce trashes first so an event is never trashed and purged in the same
// round. A purge only sees events whose grace period has passed.
func (cmd *sweeper) runOnce(ctx context.Context) error {
	var errs []error
	for _, run := range []struct {
		kind string
		fn   func(context.Context) retention.SweepResult
	}{
		{retention.KindTrash, cmd.sweeps.RunTrashSweep},
		{retention.KindPurge, cmd.sweeps.RunPermanentDeleteSweep},
	} {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res := cmd.runSweep(ctx, run.fn)
		if res.Aborted {
			errs = append(errs, fmt.Errorf("%s sweep %s aborted: %s", run.kind, res.RunID, firstError(res.Errors)))
		}
	}
	if cmd.health != nil {
		cmd.health.SetReady(true)
	}
	return errors.Join(errs...)
}

func (cmd *sweeper) runSweep(ctx context.Context, fn func(context.Context) retention.SweepResult) retention.SweepResult {
	if cmd.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.runTimeout)
		defer cancel()
	}
	res := fn(ctx)

	outcome := "success"
	switch {
	case res.Aborted:
		outcome = "aborted"
	case !res.Success:
		outcome = "partial"
	}
	sweepRunCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", res.Kind),
		attribute.String("outcome", outcome),
	))

	if cmd.health != nil {
		cmd.health.RecordSweep(healthcheck.SweepStatus{
			Kind:       res.Kind,
			RunID:      res.RunID,
			FinishedAt: res.FinishedAt,
			Processed:  res.Processed,
			Errors:     len(res.Errors),
			Failed:     res.Aborted,
		})
	}
	return res
}

func firstError(errs []string) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	return errs[0]
}

// Runs f immediately, then on a ticker every period. Never more than once per period.
func periodicLoop(ctx context.Context, period time.Duration, f func(context.Context) error) error {
	if err := f(ctx); err != nil {
		slog.Error("periodic task error", slog.Any("error", err))
	}

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := f(ctx); err != nil {
				slog.Error("periodic task error", slog.Any("error", err))
				// keep going; periodic tasks should be resilient
			}
		}
	}
}
