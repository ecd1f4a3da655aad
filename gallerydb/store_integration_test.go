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

//go:build integration
// +build integration

package gallerydb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/gallerydb/gallerydbtest"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/testhelpers"
)

func TestTrashEventIsGuarded(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.SetupTestGalleryDB(t)
	user := gallerydbtest.MustUser(t, store, "u1", "a@example.com")
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	event := gallerydbtest.MustEvent(t, store, user.ID, gallerydbtest.WithPublishedUntil(now.Add(-time.Hour)))

	candidates, err := store.ListTrashCandidates(ctx, gallerydb.ListTrashCandidatesParams{
		Now:               now,
		FreePlan:          "free",
		FreeCreatedBefore: now.AddDate(-1, 0, 0),
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, event.ID, candidates[0].ID)

	arg := gallerydb.TrashEventParams{
		TrashedAt: now,
		DeleteAt:  now.Add(30 * 24 * time.Hour),
		UpdatedAt: now,
		ID:        event.ID,
	}
	n, err := store.TrashEvent(ctx, arg)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.TrashEvent(ctx, arg)
	require.NoError(t, err)
	assert.Zero(t, n, "second trash of the same event must not match")
}

func TestTrashWindowConstraint(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.SetupTestGalleryDB(t)
	user := gallerydbtest.MustUser(t, store, "u1", "a@example.com")
	event := gallerydbtest.MustEvent(t, store, user.ID)
	now := time.Now().UTC()

	_, err := store.TrashEvent(ctx, gallerydb.TrashEventParams{
		TrashedAt: now,
		DeleteAt:  now.Add(24 * time.Hour),
		UpdatedAt: now,
		ID:        event.ID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events_trash_window_check")
}

func TestDeletionEventsOutliveEvent(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.SetupTestGalleryDB(t)
	user := gallerydbtest.MustUser(t, store, "u1", "a@example.com")
	event := gallerydbtest.MustEvent(t, store, user.ID)

	err := store.ExecTx(ctx, func(q gallerydb.Querier) error {
		if _, err := audit.Append(ctx, q, audit.Entry{
			EventID:  event.ID,
			Action:   audit.ActionDeleted,
			Reason:   "grace_period_elapsed",
			Metadata: audit.EventMetadata(event),
			At:       time.Now().UTC(),
		}); err != nil {
			return err
		}
		_, err := q.DeleteEvent(ctx, event.ID)
		return err
	})
	require.NoError(t, err)

	records, err := audit.History(ctx, store, event.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Detached)
	assert.Equal(t, event.ID.String(), records[0].Metadata["event_id"])
}

func TestExecTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.SetupTestGalleryDB(t)
	user := gallerydbtest.MustUser(t, store, "u1", "a@example.com")
	event := gallerydbtest.MustEvent(t, store, user.ID)

	boom := errors.New("boom")
	err := store.ExecTx(ctx, func(q gallerydb.Querier) error {
		if _, err := q.DeleteEvent(ctx, event.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.GetEvent(ctx, event.ID)
	assert.NoError(t, err)
	_, err = store.GetEvent(ctx, uuid.New())
	assert.True(t, gallerydb.IsNotFound(err))
}

func TestEmailLookupsIgnoreCase(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.SetupTestGalleryDB(t)
	user := gallerydbtest.MustUser(t, store, "u1", "Mixed@Example.com")
	gallerydbtest.MustIdentityRows(t, store, user)

	users, err := store.ListUsersByEmail(ctx, "mixed@example.COM")
	require.NoError(t, err)
	require.Len(t, users, 1)

	n, err := store.CountVerificationsByIdentifier(ctx, "MIXED@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.CreateUser(ctx, gallerydb.CreateUserParams{ID: "u2", Name: "dup", Email: "mixed@example.com"})
	assert.Error(t, err, "unique email index is case-insensitive")
}
