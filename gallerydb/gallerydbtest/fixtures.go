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

package gallerydbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
)

// The Must* helpers seed rows through any gallerydb.Querier, so the same
// fixtures serve the in-memory store and the PostgreSQL integration tests.

func MustUser(t testing.TB, q gallerydb.Querier, id, email string) gallerydb.User {
	t.Helper()
	u, err := q.CreateUser(context.Background(), gallerydb.CreateUserParams{
		ID:        id,
		Name:      "User " + id,
		Email:     email,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
	return u
}

// EventOption adjusts the CreateEvent parameters.
type EventOption func(*gallerydb.CreateEventParams)

func WithPlan(plan string) EventOption {
	return func(p *gallerydb.CreateEventParams) { p.Plan = plan }
}

func WithCreatedAt(at time.Time) EventOption {
	return func(p *gallerydb.CreateEventParams) { p.CreatedAt = at }
}

// WithPublishedUntil marks the event published with the given download
// window end.
func WithPublishedUntil(end time.Time) EventOption {
	return func(p *gallerydb.CreateEventParams) {
		p.IsPublished = true
		p.DownloadWindowEnd = &end
	}
}

func WithOrganization(orgID string) EventOption {
	return func(p *gallerydb.CreateEventParams) { p.OrganizationID = &orgID }
}

func MustEvent(t testing.TB, q gallerydb.Querier, ownerID string, opts ...EventOption) gallerydb.Event {
	t.Helper()
	arg := gallerydb.CreateEventParams{
		ID:        uuid.New(),
		UserID:    ownerID,
		Name:      "Event",
		Plan:      "pro",
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&arg)
	}
	e, err := q.CreateEvent(context.Background(), arg)
	require.NoError(t, err)
	return e
}

func MustAlbum(t testing.TB, q gallerydb.Querier, eventID uuid.UUID) gallerydb.Album {
	t.Helper()
	a, err := q.CreateAlbum(context.Background(), gallerydb.CreateAlbumParams{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      "Album",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return a
}

func MustUpload(t testing.TB, q gallerydb.Querier, eventID uuid.UUID, url string, size int64) gallerydb.Upload {
	t.Helper()
	u, err := q.CreateUpload(context.Background(), gallerydb.CreateUploadParams{
		ID:          uuid.New(),
		EventID:     eventID,
		Url:         url,
		SizeBytes:   size,
		ContentType: "image/jpeg",
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return u
}

func MustGuestbookEntry(t testing.TB, q gallerydb.Querier, eventID uuid.UUID) gallerydb.GuestbookEntry {
	t.Helper()
	g, err := q.CreateGuestbookEntry(context.Background(), gallerydb.CreateGuestbookEntryParams{
		ID:         uuid.New(),
		EventID:    eventID,
		AuthorName: "Guest",
		Message:    "Congratulations!",
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return g
}

// MustIdentityRows seeds one session, account, verification, membership and
// sent invitation for the user.
func MustIdentityRows(t testing.TB, q gallerydb.Querier, user gallerydb.User) {
	t.Helper()
	ctx := context.Background()
	expires := time.Now().Add(24 * time.Hour).UTC()
	orgID := "org-" + user.ID

	require.NoError(t, q.CreateSession(ctx, gallerydb.CreateSessionParams{
		ID: "sess-" + user.ID, UserID: user.ID, Token: "tok-" + user.ID, ExpiresAt: expires,
	}))
	require.NoError(t, q.CreateAccount(ctx, gallerydb.CreateAccountParams{
		ID: "acct-" + user.ID, UserID: user.ID, ProviderID: "credential", AccountID: user.ID,
	}))
	require.NoError(t, q.CreateVerification(ctx, gallerydb.CreateVerificationParams{
		ID: "ver-" + user.ID, Identifier: user.Email, Value: "123456", ExpiresAt: expires,
	}))
	require.NoError(t, q.CreateOrganization(ctx, gallerydb.CreateOrganizationParams{
		ID: orgID, Name: "Org " + user.ID,
	}))
	require.NoError(t, q.CreateMember(ctx, gallerydb.CreateMemberParams{
		ID: "mem-" + user.ID, OrganizationID: orgID, UserID: user.ID, Role: "owner",
	}))
	require.NoError(t, q.CreateInvitation(ctx, gallerydb.CreateInvitationParams{
		ID: "inv-" + user.ID, OrganizationID: orgID, Email: "guest+" + user.ID + "@example.com",
		Role: "member", InviterID: user.ID, ExpiresAt: expires,
	}))
}
