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

	"github.com/cardinalhq/gallerykeeper/internal/teardown"
)

var errNotConfirmed = errors.New("refusing to delete without --yes")

func init() {
	var actor string
	var confirmed bool

	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Preview and delete user accounts (admin only)",
	}
	accountsCmd.PersistentFlags().StringVar(&actor, "as", "", "Email of the admin running the command (default $GALLERYKEEPER_ACTOR)")

	previewCmd := &cobra.Command{
		Use:   "preview <user-id>",
		Short: "Show everything deleting the user would remove",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), outputFormat)
			if err != nil {
				return err
			}
			return runWithServices("gallerykeeper-accounts", func(ctx context.Context, svc *services) error {
				return runAccountPreview(ctx, adminAllowlist(svc.cfg.Admin), actorOrEnv(actor), svc.teardown(), args[0], p)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Permanently delete a user and everything the user owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), outputFormat)
			if err != nil {
				return err
			}
			return runWithServices("gallerykeeper-accounts", func(ctx context.Context, svc *services) error {
				return runAccountDelete(ctx, adminAllowlist(svc.cfg.Admin), actorOrEnv(actor), svc.teardown(), args[0], confirmed, p)
			})
		},
	}
	deleteCmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the deletion; without it only the preview is shown")

	purgeCmd := &cobra.Command{
		Use:   "purge-email <email>",
		Short: "Remove every account and residual record registered under an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd.OutOrStdout(), outputFormat)
			if err != nil {
				return err
			}
			return runWithServices("gallerykeeper-accounts", func(ctx context.Context, svc *services) error {
				return runPurgeEmail(ctx, adminAllowlist(svc.cfg.Admin), actorOrEnv(actor), svc.teardown(), args[0], confirmed, p)
			})
		},
	}
	purgeCmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the purge")

	accountsCmd.AddCommand(previewCmd, deleteCmd, purgeCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccountPreview(ctx context.Context, authorize AuthorizeFunc, actor string, svc *teardown.Service, userID string, p *printer) error {
	if err := authorize(actor); err != nil {
		return err
	}
	preview, err := svc.Preview(ctx, userID)
	if err != nil {
		return err
	}
	return p.print(preview, previewText(preview))
}

func runAccountDelete(ctx context.Context, authorize AuthorizeFunc, actor string, svc *teardown.Service, userID string, confirmed bool, p *printer) error {
	if err := authorize(actor); err != nil {
		return err
	}
	if !confirmed {
		preview, err := svc.Preview(ctx, userID)
		if err != nil {
			return err
		}
		if err := p.print(preview, previewText(preview)); err != nil {
			return err
		}
		return errNotConfirmed
	}

	slog.Info("Deleting user account", slog.String("userID", userID), slog.String("actor", actor))
	res, err := svc.Execute(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	return p.print(res, deletionText(res))
}

func runPurgeEmail(ctx context.Context, authorize AuthorizeFunc, actor string, svc *teardown.Service, email string, confirmed bool, p *printer) error {
	if err := authorize(actor); err != nil {
		return err
	}
	if !confirmed {
		return errNotConfirmed
	}

	slog.Info("Purging accounts by email", slog.String("email", email), slog.String("actor", actor))
	res, err := svc.PurgeByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("purge %s: %w", email, err)
	}
	return p.print(res, purgeText(res))
}
