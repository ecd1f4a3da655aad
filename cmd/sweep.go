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
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/gallerykeeper/internal/retention"
)

func init() {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one retention sweep and exit",
		Long: `Run a single trash or purge sweep, for cron-style scheduling. Use
--dry-run to list the events that would change without touching them.`,
	}

	for _, kind := range []string{retention.KindTrash, retention.KindPurge} {
		var dryRun bool
		c := &cobra.Command{
			Use:   kind,
			Short: sweepShort(kind),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				p, err := newPrinter(cmd.OutOrStdout(), outputFormat)
				if err != nil {
					return err
				}
				return runWithServices("gallerykeeper-sweep-"+kind, func(ctx context.Context, svc *services) error {
					return runSweep(ctx, svc.sweeper(), kind, dryRun, p)
				})
			},
		}
		c.Flags().BoolVar(&dryRun, "dry-run", false, "List candidates and reasons without changing anything")
		sweepCmd.AddCommand(c)
	}

	rootCmd.AddCommand(sweepCmd)
}

func sweepShort(kind string) string {
	if kind == retention.KindTrash {
		return "Move expired events to the trash"
	}
	return "Permanently delete events whose grace period has passed"
}

func runSweep(ctx context.Context, sw *retention.Sweeper, kind string, dryRun bool, p *printer) error {
	if dryRun {
		var (
			planned []retention.Planned
			err     error
		)
		if kind == retention.KindTrash {
			planned, err = sw.PlanTrash(ctx)
		} else {
			planned, err = sw.PlanPurge(ctx)
		}
		if err != nil {
			return err
		}
		if planned == nil {
			planned = []retention.Planned{}
		}
		return p.print(planned, plannedText(kind, planned))
	}

	var res retention.SweepResult
	if kind == retention.KindTrash {
		res = sw.RunTrashSweep(ctx)
	} else {
		res = sw.RunPermanentDeleteSweep(ctx)
	}
	if err := p.print(res, sweepResultText(res)); err != nil {
		return err
	}
	if !res.Success {
		slog.Error("Sweep finished with errors", slog.String("kind", kind), slog.Int("errors", len(res.Errors)))
		return fmt.Errorf("%s sweep %s finished with %d error(s)", kind, res.RunID, len(res.Errors))
	}
	return nil
}
