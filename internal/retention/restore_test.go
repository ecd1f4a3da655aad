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

package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/gallerydb/gallerydbtest"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
)

func TestRestoreEvent_Owner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := gallerydbtest.MustEvent(t, f.store, f.owner.ID)
	f.trashedAt(t, e.ID, daysAgo(5))

	res := f.sweeper.RestoreEvent(ctx, e.ID, f.owner.ID)
	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Error)

	got := f.event(t, e.ID)
	assert.Equal(t, "active", got.Status)
	assert.Nil(t, got.TrashedAt)
	assert.Nil(t, got.DeleteAt)
	assert.True(t, got.UpdatedAt.Equal(testNow))

	history := f.history(t, e.ID)
	require.Len(t, history, 1)
	assert.Equal(t, audit.ActionRestored, history[0].Action)
	assert.Equal(t, "owner_restore", history[0].Reason)
	assert.Equal(t, f.owner.ID, history[0].Metadata["restored_by"])
}

func TestRestoreEvent_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	member := gallerydbtest.MustUser(t, f.store, "member-1", "member@example.com")

	active := gallerydbtest.MustEvent(t, f.store, f.owner.ID)
	shared := gallerydbtest.MustEvent(t, f.store, f.owner.ID, gallerydbtest.WithOrganization("org-owner-1"))
	f.trashedAt(t, shared.ID, daysAgo(3))

	tests := []struct {
		name    string
		eventID uuid.UUID
		userID  string
		want    error
	}{
		{"missing event", uuid.New(), f.owner.ID, ErrEventNotFound},
		{"not trashed", active.ID, f.owner.ID, lifecycle.ErrNotTrashed},
		{"organization member", shared.ID, member.ID, ErrNotOwner},
		{"stranger", shared.ID, "someone-else", ErrNotOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.sweeper.RestoreEvent(ctx, tt.eventID, tt.userID)
			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, tt.want)
			assert.NotEmpty(t, res.Error)
		})
	}

	assert.Equal(t, "active", f.event(t, active.ID).Status)
	assert.Equal(t, "trashed", f.event(t, shared.ID).Status)
	assert.Empty(t, f.store.DeletionEvents())
}

func TestRestoreEvent_SecondRestoreRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := gallerydbtest.MustEvent(t, f.store, f.owner.ID)
	f.trashedAt(t, e.ID, daysAgo(5))

	require.True(t, f.sweeper.RestoreEvent(ctx, e.ID, f.owner.ID).Success)
	again := f.sweeper.RestoreEvent(ctx, e.ID, f.owner.ID)
	assert.False(t, again.Success)
	assert.ErrorIs(t, again.Err, lifecycle.ErrNotTrashed)
	assert.Len(t, f.store.DeletionEvents(), 1)
}

func TestRestoreEvent_AuditFailureLeavesEventTrashed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := gallerydbtest.MustEvent(t, f.store, f.owner.ID)
	f.trashedAt(t, e.ID, daysAgo(5))
	f.store.FailAlways("InsertDeletionEvent", errors.New("insert failed"))

	res := f.sweeper.RestoreEvent(ctx, e.ID, f.owner.ID)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "insert failed")
	assert.Equal(t, "trashed", f.event(t, e.ID).Status)
}

func TestRestoreEvent_ThenTrashSweepAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := gallerydbtest.MustEvent(t, f.store, f.owner.ID, gallerydbtest.WithPublishedUntil(daysAgo(1)))

	require.Equal(t, 1, f.sweeper.RunTrashSweep(ctx).Processed)
	require.True(t, f.sweeper.RestoreEvent(ctx, e.ID, f.owner.ID).Success)

	// The window is still closed, so the next sweep trashes it again.
	f.clock.Advance(24 * time.Hour)
	res := f.sweeper.RunTrashSweep(ctx)
	assert.Equal(t, 1, res.Processed)

	actions := []audit.Action{}
	for _, r := range f.history(t, e.ID) {
		actions = append(actions, r.Action)
	}
	assert.Equal(t, []audit.Action{audit.ActionTrashed, audit.ActionRestored, audit.ActionTrashed}, actions)
}
