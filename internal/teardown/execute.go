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

package teardown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/identity"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
	"github.com/cardinalhq/gallerykeeper/internal/logctx"
)

// DeletionResult describes a completed teardown. Errors holds failures that
// did not prevent the relational delete.
type DeletionResult struct {
	Success        bool          `json:"success" yaml:"success"`
	UserID         string        `json:"user_id" yaml:"user_id"`
	Email          string        `json:"email" yaml:"email"`
	Deleted        DeletedCounts `json:"deleted" yaml:"deleted"`
	StorageDeleted int           `json:"storage_deleted" yaml:"storage_deleted"`
	Errors         []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Execute permanently deletes the user and everything the user owns.
// Session revocation and storage cleanup are best effort; the relational
// delete runs in one transaction and decides success.
func (s *Service) Execute(ctx context.Context, userID string) (DeletionResult, error) {
	ctx, logger := logctx.WithAttrs(ctx, "userID", userID)

	preview, err := s.Preview(ctx, userID)
	if err != nil {
		teardownCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("path", "user_id"),
			attribute.String("outcome", "failed"),
		))
		return DeletionResult{UserID: userID}, err
	}

	res := DeletionResult{
		UserID: userID,
		Email:  preview.User.Email,
	}

	revoked, err := s.revokeSessions(ctx, preview)
	if err != nil {
		logger.Warn("Failed to revoke identity provider sessions", "error", err)
		res.Errors = append(res.Errors, err.Error())
	}

	deleted, storageErr := s.cleanStorage(ctx, preview)
	res.StorageDeleted = deleted
	if storageErr != nil {
		logger.Warn("Storage cleanup incomplete", "error", storageErr)
		for _, e := range storageErr.Errors {
			res.Errors = append(res.Errors, e.Error())
		}
	}

	now := s.clock.Now()
	err = s.store.ExecTx(ctx, func(q gallerydb.Querier) error {
		counts, err := deleteUserRows(ctx, q, preview.User.ID, preview.User.Email, now)
		if err != nil {
			return err
		}
		counts.Sessions += revoked
		res.Deleted = counts
		return nil
	})
	if err != nil {
		teardownCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("path", "user_id"),
			attribute.String("outcome", "failed"),
		))
		logger.Error("Account teardown failed", "error", err)
		res.Errors = append(res.Errors, err.Error())
		return res, err
	}

	res.Success = true
	teardownCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", "user_id"),
		attribute.String("outcome", "deleted"),
	))
	logger.Info("Deleted user account",
		"events", res.Deleted.Events,
		"uploads", res.Deleted.Uploads,
		"storageDeleted", res.StorageDeleted,
		"nonFatalErrors", len(res.Errors))
	return res, nil
}

// revokeSessions asks the identity provider to end the user's sessions and
// returns how many of the previewed session rows the provider removed
// itself. The transaction deletes whatever is left.
func (s *Service) revokeSessions(ctx context.Context, p DeletionPreview) (int64, error) {
	if err := s.identity.RevokeSessions(ctx, p.User.ID); err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	remaining, err := s.store.CountSessionsByUser(ctx, p.User.ID)
	if err != nil {
		logctx.FromContext(ctx).Warn("Failed to count sessions after revoke", "error", err)
		return 0, nil
	}
	return max(p.Identity.Sessions-remaining, 0), nil
}

// cleanStorage removes the preview's storage keys, then each event prefix to
// catch derived objects no upload row points at.
func (s *Service) cleanStorage(ctx context.Context, p DeletionPreview) (int, *multierror.Error) {
	if s.objects == nil {
		logctx.FromContext(ctx).Warn("Object storage not configured; skipping storage cleanup")
		return 0, nil
	}

	var merr *multierror.Error
	for _, u := range p.Uploads.UnresolvedURLs {
		merr = multierror.Append(merr, fmt.Errorf("cannot resolve storage key for %q", u))
	}

	deleted := 0
	report := s.objects.DeleteKeys(ctx, p.Uploads.StorageKeys)
	deleted += report.Deleted
	if report.Err != nil {
		merr = multierror.Append(merr, fmt.Errorf("delete upload objects: %w", report.Err))
	}
	for _, key := range report.Failed {
		merr = multierror.Append(merr, fmt.Errorf("delete %s: not deleted", key))
	}

	for _, e := range p.Events.Items {
		prefix := s.objects.EventPrefix(e.ID)
		report := s.objects.PurgePrefix(ctx, prefix)
		deleted += report.Deleted
		if report.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("purge %s: %w", prefix, report.Err))
		} else if len(report.Failed) > 0 {
			merr = multierror.Append(merr, fmt.Errorf("purge %s: %d objects not deleted", prefix, len(report.Failed)))
		}
	}
	return deleted, merr
}

// deleteUserRows removes the user's content and identity rows in dependency
// order. A user row that is already gone fails with ErrUserNotFound.
func deleteUserRows(ctx context.Context, q gallerydb.Querier, userID, email string, now time.Time) (DeletedCounts, error) {
	c, err := deleteContentRows(ctx, q, userID, now)
	if err != nil {
		return c, err
	}
	ids, err := deleteIdentityRows(ctx, q, userID, email)
	if err != nil {
		return c, err
	}
	c.add(ids)
	if c.Users == 0 {
		return c, ErrUserNotFound
	}
	return c, nil
}

type deleteStep struct {
	dst  *int64
	what string
	fn   func() (int64, error)
}

func runSteps(steps []deleteStep) error {
	for _, step := range steps {
		n, err := step.fn()
		if err != nil {
			return fmt.Errorf("delete %s: %w", step.what, err)
		}
		*step.dst = n
	}
	return nil
}

// deleteContentRows writes one deleted audit record per owned event, then
// removes guestbook entries, uploads, albums and events.
func deleteContentRows(ctx context.Context, q gallerydb.Querier, userID string, now time.Time) (DeletedCounts, error) {
	var c DeletedCounts

	events, err := q.ListEventsByOwner(ctx, userID)
	if err != nil {
		return c, fmt.Errorf("list events: %w", err)
	}
	for _, e := range events {
		if _, err := audit.Append(ctx, q, audit.Entry{
			EventID:  e.ID,
			Action:   audit.ActionDeleted,
			Reason:   string(lifecycle.ReasonAccountDeleted),
			Metadata: audit.EventMetadata(e),
			At:       now,
		}); err != nil {
			return c, err
		}
	}

	err = runSteps([]deleteStep{
		{&c.GuestbookEntries, "guestbook entries", func() (int64, error) { return q.DeleteGuestbookEntriesByOwner(ctx, userID) }},
		{&c.Uploads, "uploads", func() (int64, error) { return q.DeleteUploadsByOwner(ctx, userID) }},
		{&c.Albums, "albums", func() (int64, error) { return q.DeleteAlbumsByOwner(ctx, userID) }},
		{&c.Events, "events", func() (int64, error) { return q.DeleteEventsByOwner(ctx, userID) }},
	})
	return c, err
}

// deleteIdentityRows removes the rows the identity provider keeps for the
// user, then the user row itself.
func deleteIdentityRows(ctx context.Context, q gallerydb.Querier, userID, email string) (DeletedCounts, error) {
	var c DeletedCounts
	err := runSteps([]deleteStep{
		{&c.Verifications, "verifications", func() (int64, error) { return q.DeleteVerificationsByIdentifier(ctx, email) }},
		{&c.InvitationsSent, "invitations", func() (int64, error) { return q.DeleteInvitationsByInviter(ctx, userID) }},
		{&c.Memberships, "memberships", func() (int64, error) { return q.DeleteMembersByUser(ctx, userID) }},
		{&c.Accounts, "accounts", func() (int64, error) { return q.DeleteAccountsByUser(ctx, userID) }},
		{&c.Sessions, "sessions", func() (int64, error) { return q.DeleteSessionsByUser(ctx, userID) }},
		{&c.Users, "user", func() (int64, error) { return q.DeleteUser(ctx, userID) }},
	})
	return c, err
}

// PurgeResult describes a cleanup by email.
type PurgeResult struct {
	Email string `json:"email" yaml:"email"`
	// UserIDs are the user rows that matched the email.
	UserIDs []string `json:"user_ids" yaml:"user_ids"`
	// ProviderRemoved lists users removed through the identity provider.
	ProviderRemoved []string      `json:"provider_removed,omitempty" yaml:"provider_removed,omitempty"`
	Deleted         DeletedCounts `json:"deleted" yaml:"deleted"`
	StorageDeleted  int           `json:"storage_deleted" yaml:"storage_deleted"`
	Errors          []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// PurgeByEmail removes every trace of accounts registered under email,
// including half-created ones that block a new signup. The identity
// provider's admin API is tried first for each user; when it fails or
// leaves the user row behind, rows are deleted directly. Verifications and
// invitations addressed to the email are always removed. No matching user
// is not an error.
func (s *Service) PurgeByEmail(ctx context.Context, email string) (PurgeResult, error) {
	ctx, logger := logctx.WithAttrs(ctx, "email", email)
	res := PurgeResult{Email: email, UserIDs: []string{}}

	users, err := s.store.ListUsersByEmail(ctx, email)
	if err != nil {
		return res, fmt.Errorf("list users by email: %w", err)
	}

	for _, u := range users {
		res.UserIDs = append(res.UserIDs, u.ID)
		if err := s.purgeUser(ctx, u, &res); err != nil {
			teardownCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("path", "email"),
				attribute.String("outcome", "failed"),
			))
			return res, fmt.Errorf("purge user %s: %w", u.ID, err)
		}
		teardownCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("path", "email"),
			attribute.String("outcome", "deleted"),
		))
	}

	err = s.store.ExecTx(ctx, func(q gallerydb.Querier) error {
		n, err := q.DeleteVerificationsByIdentifier(ctx, email)
		if err != nil {
			return fmt.Errorf("delete verifications: %w", err)
		}
		res.Deleted.Verifications += n
		if _, err := q.DeleteInvitationsByEmail(ctx, email); err != nil {
			return fmt.Errorf("delete invitations: %w", err)
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	logger.Info("Purged accounts by email",
		"users", len(res.UserIDs),
		"providerRemoved", len(res.ProviderRemoved),
		"nonFatalErrors", len(res.Errors))
	return res, nil
}

func (s *Service) purgeUser(ctx context.Context, u gallerydb.User, res *PurgeResult) error {
	ctx, logger := logctx.WithAttrs(ctx, "userID", u.ID)

	preview, err := s.previewUser(ctx, s.store, u)
	if err != nil {
		return err
	}
	deleted, storageErr := s.cleanStorage(ctx, preview)
	res.StorageDeleted += deleted
	if storageErr != nil {
		for _, e := range storageErr.Errors {
			res.Errors = append(res.Errors, fmt.Sprintf("user %s: %v", u.ID, e))
		}
	}

	now := s.clock.Now()
	err = s.store.ExecTx(ctx, func(q gallerydb.Querier) error {
		counts, err := deleteContentRows(ctx, q, u.ID, now)
		if err != nil {
			return err
		}
		res.Deleted.add(counts)
		return nil
	})
	if err != nil {
		return err
	}

	providerErr := s.identity.RemoveUser(ctx, u.ID)
	if providerErr == nil {
		_, err := s.store.GetUser(ctx, u.ID)
		if gallerydb.IsNotFound(err) {
			res.ProviderRemoved = append(res.ProviderRemoved, u.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		logger.Warn("Identity provider left the user row behind; deleting directly")
	} else if !errors.Is(providerErr, identity.ErrNotConfigured) {
		logger.Warn("Identity provider removal failed; deleting directly", "error", providerErr)
		res.Errors = append(res.Errors, fmt.Sprintf("user %s: identity provider: %v", u.ID, providerErr))
	}

	return s.store.ExecTx(ctx, func(q gallerydb.Querier) error {
		counts, err := deleteIdentityRows(ctx, q, u.ID, u.Email)
		if err != nil {
			return err
		}
		res.Deleted.add(counts)
		return nil
	})
}
