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
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/retention"
)

func init() {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect and restore events",
	}

	var userID string
	restoreCmd := &cobra.Command{
		Use:   "restore <event-id>",
		Short: "Restore a trashed event on behalf of its owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid event id %q: %w", args[0], err)
			}
			p, err := newPrinter(cmd.OutOrStdout(), outputFormat)
			if err != nil {
				return err
			}
			return runWithServices("gallerykeeper-events", func(ctx context.Context, svc *services) error {
				return runRestore(ctx, svc.sweeper(), eventID, userID, p)
			})
		},
	}
	restoreCmd.Flags().StringVar(&userID, "user", "", "ID of the user requesting the restore; must own the event")
	_ = restoreCmd.MarkFlagRequired("user")

	historyCmd := &cobra.Command{
		Use:   "history <event-id>",
		Short: "Show the lifecycle audit trail of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid event id %q: %w", args[0], err)
			}
			p, err := newPrinter(cmd.OutOrStdout(), outputFormat)
			if err != nil {
				return err
			}
			return runWithServices("gallerykeeper-events", func(ctx context.Context, svc *services) error {
				return runHistory(ctx, svc.store, eventID, p)
			})
		},
	}

	eventsCmd.AddCommand(restoreCmd, historyCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runRestore(ctx context.Context, sw *retention.Sweeper, eventID uuid.UUID, userID string, p *printer) error {
	res := sw.RestoreEvent(ctx, eventID, userID)
	err := p.print(res, func(w io.Writer) error {
		if res.Success {
			_, err := fmt.Fprintf(w, "Restored event %s\n", eventID)
			return err
		}
		_, err := fmt.Fprintf(w, "Could not restore event %s: %s\n", eventID, res.Error)
		return err
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("restore event %s: %w", eventID, res.Err)
	}
	return nil
}

func runHistory(ctx context.Context, q audit.Reader, eventID uuid.UUID, p *printer) error {
	records, err := audit.History(ctx, q, eventID)
	if err != nil {
		return err
	}
	if records == nil {
		records = []audit.Record{}
	}
	return p.print(records, historyText(records))
}
