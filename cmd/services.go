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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/config"
	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
	"github.com/cardinalhq/gallerykeeper/internal/identity"
	"github.com/cardinalhq/gallerykeeper/internal/retention"
	"github.com/cardinalhq/gallerykeeper/internal/storageprofile"
	"github.com/cardinalhq/gallerykeeper/internal/teardown"
)

// services holds the collaborators every command builds its work from.
type services struct {
	cfg      *config.Config
	store    gallerydb.StoreFull
	objects  *cloudstorage.Gateway
	identity identity.Provider
}

func openServices(ctx context.Context, cfg *config.Config) (*services, error) {
	store, err := gallerydb.OpenStore(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := cloudstorage.NewGatewayForProfile(ctx, cloudstorage.NewCloudManagers(), cfg.Storage.Profile(),
		cloudstorage.WithDeleteConcurrency(cfg.Storage.DeleteConcurrency))
	switch {
	case errors.Is(err, storageprofile.ErrNotConfigured):
		slog.Warn("Object storage not configured; storage cleanup will be skipped")
		gw = nil
	case err != nil:
		store.Close()
		return nil, fmt.Errorf("failed to open object storage: %w", err)
	}

	return &services{
		cfg:      cfg,
		store:    store,
		objects:  gw,
		identity: identity.New(cfg.Identity),
	}, nil
}

func (s *services) Close() {
	s.store.Close()
}

func (s *services) sweeper() *retention.Sweeper {
	// A nil *Gateway must not become a non-nil interface.
	var objects retention.ObjectStore
	if s.objects != nil {
		objects = s.objects
	}
	return retention.New(s.store, objects, s.cfg.Retention.Policy())
}

func (s *services) teardown() *teardown.Service {
	var objects teardown.ObjectStore
	if s.objects != nil {
		objects = s.objects
	}
	return teardown.New(s.store, objects, s.identity)
}

// runWithServices runs fn as a one-shot command: logs go to stderr, the
// configuration is loaded, and the run is bounded by retention.run_timeout.
func runWithServices(servicename string, fn func(ctx context.Context, svc *services) error) error {
	logOutput = os.Stderr
	doneCtx, doneFx, err := setupTelemetry(servicename, nil)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer func() {
		if err := doneFx(); err != nil {
			slog.Error("Error shutting down telemetry", slog.Any("error", err))
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := doneCtx
	if cfg.Retention.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(doneCtx, cfg.Retention.RunTimeout)
		defer cancel()
	}

	svc, err := openServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	start := time.Now()
	err = fn(ctx, svc)
	commandDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributeSet(commonAttributes))
	return err
}
