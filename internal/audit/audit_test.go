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

package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/gallerydb/gallerydbtest"
)

type mockAppender struct {
	mock.Mock
}

func (m *mockAppender) InsertDeletionEvent(ctx context.Context, arg gallerydb.InsertDeletionEventParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func TestAppend_EmbedsEventID(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m := &mockAppender{}
	m.On("InsertDeletionEvent", ctx, mock.MatchedBy(func(arg gallerydb.InsertDeletionEventParams) bool {
		return arg.EventID != nil && *arg.EventID == eventID &&
			arg.Action == "trashed" &&
			arg.Reason == "free_event_old" &&
			arg.CreatedAt.Equal(at) &&
			assert.JSONEq(t, `{"event_id":"`+eventID.String()+`","plan":"free"}`, string(arg.Metadata))
	})).Return(nil).Once()

	meta := map[string]any{"plan": "free"}
	id, err := Append(ctx, m, Entry{EventID: eventID, Action: ActionTrashed, Reason: "free_event_old", Metadata: meta, At: at})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.NotContains(t, meta, "event_id", "caller's map must not be modified")
	m.AssertExpectations(t)
}

func TestAppend_WrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	m := &mockAppender{}
	m.On("InsertDeletionEvent", mock.Anything, mock.Anything).Return(boom)

	_, err := Append(context.Background(), m, Entry{EventID: uuid.New(), Action: ActionDeleted})
	assert.ErrorIs(t, err, boom)
}

func TestHistory_SurvivesEventDeletion(t *testing.T) {
	ctx := context.Background()
	store := gallerydbtest.NewMemoryStore()
	user := gallerydbtest.MustUser(t, store, "u1", "host@example.com")
	event := gallerydbtest.MustEvent(t, store, user.ID, gallerydbtest.WithPlan("free"))

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := Append(ctx, store, Entry{EventID: event.ID, Action: ActionTrashed, Reason: "free_event_old", Metadata: EventMetadata(event), At: at})
	require.NoError(t, err)
	_, err = Append(ctx, store, Entry{EventID: event.ID, Action: ActionDeleted, Reason: "grace_period_elapsed", At: at.Add(time.Hour)})
	require.NoError(t, err)

	_, err = store.DeleteEvent(ctx, event.ID)
	require.NoError(t, err)

	history, err := History(ctx, store, event.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ActionTrashed, history[0].Action)
	assert.Equal(t, ActionDeleted, history[1].Action)
	assert.Equal(t, "free", history[0].Metadata["plan"])
	for _, r := range history {
		assert.True(t, r.Detached)
		assert.Equal(t, event.ID, r.EventID)
	}
}

func TestEventMetadata(t *testing.T) {
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	org := "org-1"
	meta := EventMetadata(gallerydb.Event{
		UserID:            "u1",
		OrganizationID:    &org,
		Plan:              "pro",
		IsPublished:       true,
		DownloadWindowEnd: &end,
		CreatedAt:         end.AddDate(0, -1, 0),
	})
	assert.Equal(t, "pro", meta["plan"])
	assert.Equal(t, true, meta["is_published"])
	assert.Equal(t, "2026-02-01T00:00:00Z", meta["download_window_end"])
	assert.Equal(t, "org-1", meta["organization_id"])
	assert.NotContains(t, meta, "delete_at")
}
