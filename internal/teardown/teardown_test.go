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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/gallerydb/gallerydbtest"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/clock"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage/cloudstoragetest"
	"github.com/cardinalhq/gallerykeeper/internal/identity"
)

const (
	testBucket  = "media"
	testCDNBase = "https://cdn.test"
	mib         = 1 << 20
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) RevokeSessions(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockIdentity) RemoveUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type fixture struct {
	store   *gallerydbtest.MemoryStore
	objects *cloudstoragetest.MemoryClient
	svc     *Service
	user    gallerydb.User
	events  []gallerydb.Event
	keys    []string
}

// newFixture seeds a user with two events, each holding one album, one
// guestbook entry and five 512 KiB uploads, plus one identity row of each
// kind and a bystander user who must survive every teardown.
func newFixture(t *testing.T, provider identity.Provider) *fixture {
	t.Helper()
	f := &fixture{
		store:   gallerydbtest.NewMemoryStore(),
		objects: cloudstoragetest.NewMemoryClient(),
	}
	gw := cloudstorage.NewGateway(f.objects, testBucket, cloudstorage.WithPublicURLBase(testCDNBase))
	f.svc = New(f.store, gw, provider, WithClock(clock.NewStub(testNow)))

	f.user = gallerydbtest.MustUser(t, f.store, "user-1", "Doomed@Example.com")
	gallerydbtest.MustIdentityRows(t, f.store, f.user)
	for range 2 {
		e := gallerydbtest.MustEvent(t, f.store, f.user.ID)
		gallerydbtest.MustAlbum(t, f.store, e.ID)
		gallerydbtest.MustGuestbookEntry(t, f.store, e.ID)
		for i := range 5 {
			key := fmt.Sprintf("events/%s/photo-%d.jpg", e.ID, i)
			gallerydbtest.MustUpload(t, f.store, e.ID, testCDNBase+"/"+key, mib/2)
			f.keys = append(f.keys, key)
			f.objects.Put(testBucket, key)
		}
		f.objects.Put(testBucket, fmt.Sprintf("events/%s/thumbs/cover.webp", e.ID))
		f.events = append(f.events, e)
	}

	other := gallerydbtest.MustUser(t, f.store, "bystander", "bystander@example.com")
	gallerydbtest.MustIdentityRows(t, f.store, other)
	kept := gallerydbtest.MustEvent(t, f.store, other.ID)
	gallerydbtest.MustUpload(t, f.store, kept.ID, testCDNBase+"/events/"+kept.ID.String()+"/keep.jpg", 10)
	f.objects.Put(testBucket, "events/"+kept.ID.String()+"/keep.jpg")
	return f
}

func TestPreview(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	before := f.store.RowCounts()

	p, err := f.svc.Preview(context.Background(), f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, "user-1", p.User.ID)
	assert.Equal(t, "Doomed@Example.com", p.User.Email)
	assert.Equal(t, 2, p.Events.Count)
	assert.Len(t, p.Events.Items, 2)
	assert.EqualValues(t, 10, p.Uploads.Count)
	assert.EqualValues(t, 5*mib, p.Uploads.TotalSizeBytes)
	assert.ElementsMatch(t, f.keys, p.Uploads.StorageKeys)
	assert.Empty(t, p.Uploads.UnresolvedURLs)
	assert.EqualValues(t, 2, p.Albums.Count)
	assert.EqualValues(t, 2, p.GuestbookEntries.Count)
	assert.Equal(t, IdentityPreview{
		Sessions:        1,
		Accounts:        1,
		Verifications:   1,
		Memberships:     1,
		InvitationsSent: 1,
	}, p.Identity)
	assert.True(t, p.StorageConfigured)

	assert.Equal(t, before, f.store.RowCounts(), "preview must not mutate")
	assert.Empty(t, f.objects.BatchSizes())
	assert.Zero(t, f.store.Transactions())
}

func TestPreviewIsRepeatable(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	first, err := f.svc.Preview(context.Background(), f.user.ID)
	require.NoError(t, err)
	second, err := f.svc.Preview(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPreviewDedupsAndReportsUnresolvedURLs(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	e := f.events[0]
	gallerydbtest.MustUpload(t, f.store, e.ID, testCDNBase+"/"+f.keys[0], 1)
	gallerydbtest.MustUpload(t, f.store, e.ID, "https://elsewhere.test/x.jpg", 1)

	p, err := f.svc.Preview(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 12, p.Uploads.Count)
	assert.Len(t, p.Uploads.StorageKeys, 10)
	assert.Equal(t, []string{"https://elsewhere.test/x.jpg"}, p.Uploads.UnresolvedURLs)
}

func TestPreviewMissingUser(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	_, err := f.svc.Preview(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExecuteRemovesEverything(t *testing.T) {
	idp := &mockIdentity{}
	idp.On("RevokeSessions", mock.Anything, "user-1").Return(nil).Once()
	f := newFixture(t, idp)
	ctx := context.Background()

	preview, err := f.svc.Preview(ctx, f.user.ID)
	require.NoError(t, err)

	res, err := f.svc.Execute(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "user-1", res.UserID)
	assert.Equal(t, "Doomed@Example.com", res.Email)
	assert.Empty(t, res.Errors)
	assert.Equal(t, preview.Counts(), res.Deleted)
	assert.Equal(t, 12, res.StorageDeleted)
	idp.AssertExpectations(t)

	rows := f.store.RowCounts()
	for _, table := range []string{"users", "sessions", "accounts", "verifications", "members", "invitations", "events", "uploads"} {
		assert.Equal(t, 1, rows[table], table)
	}
	assert.Zero(t, rows["albums"])
	assert.Zero(t, rows["guestbook_entries"])

	_, err = f.store.GetUser(ctx, "bystander")
	assert.NoError(t, err)
	assert.Len(t, f.objects.Keys(testBucket), 1, "only the bystander's object remains")
}

func TestExecuteWritesAccountDeletedAudit(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	ctx := context.Background()

	_, err := f.svc.Execute(ctx, f.user.ID)
	require.NoError(t, err)

	for _, e := range f.events {
		records, err := audit.History(ctx, f.store, e.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		r := records[0]
		assert.Equal(t, audit.ActionDeleted, r.Action)
		assert.Equal(t, "account_deleted", r.Reason)
		assert.True(t, r.Detached)
		assert.Equal(t, testNow, r.CreatedAt.UTC())
		assert.Equal(t, f.user.ID, r.Metadata["user_id"])
	}
}

func TestExecuteStoragePartialFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	f.objects.FailKey(f.keys[3], errors.New("access denied"))

	res, err := f.svc.Execute(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], f.keys[3])
	assert.Zero(t, f.store.RowCounts()["albums"])
	assert.Contains(t, f.objects.Keys(testBucket), f.keys[3])
}

func TestExecuteRevokeFailureIsNotFatal(t *testing.T) {
	idp := &mockIdentity{}
	idp.On("RevokeSessions", mock.Anything, "user-1").Return(errors.New("provider down"))
	f := newFixture(t, idp)

	res, err := f.svc.Execute(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"revoke sessions: provider down"}, res.Errors)
	assert.EqualValues(t, 1, res.Deleted.Sessions)
}

func TestExecuteCountsSessionsRevokedByProvider(t *testing.T) {
	idp := &mockIdentity{}
	f := newFixture(t, idp)
	ctx := context.Background()
	idp.On("RevokeSessions", mock.Anything, "user-1").Return(nil).Run(func(mock.Arguments) {
		n, err := f.store.DeleteSessionsByUser(ctx, "user-1")
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	}).Once()

	preview, err := f.svc.Preview(ctx, f.user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, preview.Identity.Sessions)

	res, err := f.svc.Execute(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.EqualValues(t, 1, res.Deleted.Sessions)
	assert.Equal(t, preview.Counts(), res.Deleted)
	assert.Equal(t, 1, f.store.RowCounts()["sessions"], "only the bystander's session remains")
	idp.AssertExpectations(t)
}

func TestExecuteWithoutStorage(t *testing.T) {
	store := gallerydbtest.NewMemoryStore()
	user := gallerydbtest.MustUser(t, store, "user-1", "u@example.com")
	e := gallerydbtest.MustEvent(t, store, user.ID)
	gallerydbtest.MustUpload(t, store, e.ID, testCDNBase+"/events/x/a.jpg", 1)
	svc := New(store, nil, nil)

	p, err := svc.Preview(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, p.StorageConfigured)
	assert.Empty(t, p.Uploads.StorageKeys)

	res, err := svc.Execute(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.StorageDeleted)
	assert.Zero(t, store.RowCounts()["uploads"])
}

func TestExecuteMissingUser(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	before := f.store.RowCounts()

	res, err := f.svc.Execute(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, res.Success)
	assert.Equal(t, before, f.store.RowCounts())
	assert.Empty(t, f.objects.BatchSizes())
}

func TestExecuteRollsBackOnRelationalFailure(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	before := f.store.RowCounts()
	f.store.FailAlways("DeleteAccountsByUser", errors.New("deadlock detected"))

	res, err := f.svc.Execute(context.Background(), f.user.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete accounts")
	assert.False(t, res.Success)
	assert.Equal(t, before, f.store.RowCounts())
}

func TestPurgeByEmailProviderRemovesUser(t *testing.T) {
	idp := &mockIdentity{}
	f := newFixture(t, idp)
	idp.On("RemoveUser", mock.Anything, "user-1").Run(func(args mock.Arguments) {
		_, err := f.store.DeleteUser(context.Background(), "user-1")
		require.NoError(t, err)
	}).Return(nil).Once()

	res, err := f.svc.PurgeByEmail(context.Background(), "doomed@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, res.UserIDs)
	assert.Equal(t, []string{"user-1"}, res.ProviderRemoved)
	assert.Empty(t, res.Errors)
	assert.EqualValues(t, 2, res.Deleted.Events)
	assert.EqualValues(t, 1, res.Deleted.Verifications)
	idp.AssertExpectations(t)

	_, err = f.store.GetUser(context.Background(), "user-1")
	assert.True(t, gallerydb.IsNotFound(err))
	rows := f.store.RowCounts()
	assert.Equal(t, 1, rows["users"])
	assert.Equal(t, 1, rows["verifications"])
	assert.Equal(t, 1, rows["events"])
}

func TestPurgeByEmailFallsBackWhenProviderFails(t *testing.T) {
	idp := &mockIdentity{}
	idp.On("RemoveUser", mock.Anything, "user-1").Return(errors.New("502 bad gateway"))
	f := newFixture(t, idp)

	res, err := f.svc.PurgeByEmail(context.Background(), "DOOMED@example.com")
	require.NoError(t, err)
	assert.Empty(t, res.ProviderRemoved)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "502 bad gateway")
	assert.EqualValues(t, 1, res.Deleted.Users)
	assert.EqualValues(t, 1, res.Deleted.Accounts)
	assert.EqualValues(t, 1, res.Deleted.Sessions)
	assert.EqualValues(t, 1, res.Deleted.Memberships)
	assert.EqualValues(t, 1, res.Deleted.InvitationsSent)

	rows := f.store.RowCounts()
	for _, table := range []string{"users", "sessions", "accounts", "verifications", "members", "invitations", "events"} {
		assert.Equal(t, 1, rows[table], table)
	}
}

func TestPurgeByEmailFallsBackWhenProviderLeavesRow(t *testing.T) {
	idp := &mockIdentity{}
	idp.On("RemoveUser", mock.Anything, "user-1").Return(nil)
	f := newFixture(t, idp)

	res, err := f.svc.PurgeByEmail(context.Background(), "doomed@example.com")
	require.NoError(t, err)
	assert.Empty(t, res.ProviderRemoved)
	assert.EqualValues(t, 1, res.Deleted.Users)
	assert.Equal(t, 1, f.store.RowCounts()["users"])
}

func TestPurgeByEmailResidualDuplicates(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	f.store.InsertUserUnchecked(gallerydb.User{
		ID:        "half-created",
		Email:     "doomed@example.com",
		CreatedAt: testNow,
	})

	res, err := f.svc.PurgeByEmail(context.Background(), "doomed@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "half-created"}, res.UserIDs)
	assert.Empty(t, res.Errors, "an unconfigured provider is not an error")
	assert.EqualValues(t, 2, res.Deleted.Users)
	assert.Equal(t, 1, f.store.RowCounts()["users"])
}

func TestPurgeByEmailNoUsers(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	require.NoError(t, f.store.CreateVerification(context.Background(), gallerydb.CreateVerificationParams{
		ID:         "orphan",
		Identifier: "ghost@example.com",
		Value:      "999999",
		ExpiresAt:  testNow.Add(time.Hour),
	}))

	res, err := f.svc.PurgeByEmail(context.Background(), "Ghost@Example.com")
	require.NoError(t, err)
	assert.Empty(t, res.UserIDs)
	assert.EqualValues(t, 1, res.Deleted.Verifications)
	assert.Equal(t, 2, f.store.RowCounts()["users"])
}

func TestPurgeByEmailRemovesInvitationsToEmail(t *testing.T) {
	f := newFixture(t, identity.Noop{})
	ctx := context.Background()
	require.NoError(t, f.store.CreateInvitation(ctx, gallerydb.CreateInvitationParams{
		ID:             "inv-to-ghost",
		OrganizationID: "org-bystander",
		Email:          "ghost@example.com",
		Role:           "member",
		InviterID:      "bystander",
		ExpiresAt:      testNow.Add(time.Hour),
	}))
	before := f.store.RowCounts()["invitations"]

	_, err := f.svc.PurgeByEmail(ctx, "GHOST@example.com")
	require.NoError(t, err)
	assert.Equal(t, before-1, f.store.RowCounts()["invitations"])
}

func TestDeletedCountsAdd(t *testing.T) {
	c := DeletedCounts{Events: 1, Users: 1}
	c.add(DeletedCounts{Events: 2, Uploads: 3})
	assert.Equal(t, DeletedCounts{Events: 3, Uploads: 3, Users: 1}, c)
}
