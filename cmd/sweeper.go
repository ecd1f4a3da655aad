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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/gallerykeeper/config"
	"github.com/cardinalhq/gallerykeeper/cmd/sweeper"
	"github.com/cardinalhq/gallerykeeper/internal/debugging"
	"github.com/cardinalhq/gallerykeeper/internal/healthcheck"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sweeper",
		Short: "Run the trash and purge sweeps on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			servicename := "gallerykeeper-sweeper"
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
			svc, err := openServices(doneCtx, cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			health := healthcheck.NewServer(healthcheck.GetConfigFromEnv())
			daemon := sweeper.New(svc.sweeper(), health, cfg.Retention.SweepInterval, cfg.Retention.RunTimeout)

			debugging.RunPprof(doneCtx, debugging.PprofPort())

			g, ctx := errgroup.WithContext(doneCtx)
			g.Go(func() error { return health.Start(ctx) })
			g.Go(func() error { return daemon.Run(ctx) })
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	rootCmd.AddCommand(cmd)
}
