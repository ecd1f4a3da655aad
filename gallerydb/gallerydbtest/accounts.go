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
	"fmt"
	"slices"
	"strings"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
)

func (m *MemoryStore) GetUser(_ context.Context, id string) (gallerydb.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetUser", id); err != nil {
		return gallerydb.User{}, err
	}
	u, ok := m.data.users[id]
	if !ok {
		return gallerydb.User{}, errNoRows
	}
	return u, nil
}

func (m *MemoryStore) ListUsersByEmail(_ context.Context, email string) ([]gallerydb.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListUsersByEmail", email); err != nil {
		return nil, err
	}
	var out []gallerydb.User
	for _, u := range m.data.users {
		if strings.EqualFold(u.Email, email) {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b gallerydb.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *MemoryStore) ListEventsByOwner(_ context.Context, userID string) ([]gallerydb.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListEventsByOwner", userID); err != nil {
		return nil, err
	}
	var out []gallerydb.Event
	for _, e := range m.data.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return sortEvents(out), nil
}

func (m *MemoryStore) SummarizeUploadsByOwner(_ context.Context, userID string) (gallerydb.SummarizeUploadsByOwnerRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SummarizeUploadsByOwner", userID); err != nil {
		return gallerydb.SummarizeUploadsByOwnerRow{}, err
	}
	owned := m.data.eventsOwnedBy(userID)
	var row gallerydb.SummarizeUploadsByOwnerRow
	for _, u := range m.data.uploads {
		if owned[u.EventID] {
			row.UploadCount++
			row.TotalSizeBytes += u.SizeBytes
		}
	}
	return row, nil
}

func (m *MemoryStore) ListUploadURLsByOwner(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListUploadURLsByOwner", userID); err != nil {
		return nil, err
	}
	owned := m.data.eventsOwnedBy(userID)
	var uploads []gallerydb.Upload
	for _, u := range m.data.uploads {
		if owned[u.EventID] {
			uploads = append(uploads, u)
		}
	}
	return uploadURLs(sortUploads(uploads)), nil
}

func (m *MemoryStore) CountAlbumsByOwner(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountAlbumsByOwner", userID); err != nil {
		return 0, err
	}
	owned := m.data.eventsOwnedBy(userID)
	return countWhere(m.data.albums, func(a gallerydb.Album) bool { return owned[a.EventID] }), nil
}

func (m *MemoryStore) CountGuestbookEntriesByOwner(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountGuestbookEntriesByOwner", userID); err != nil {
		return 0, err
	}
	owned := m.data.eventsOwnedBy(userID)
	return countWhere(m.data.guestbook, func(g gallerydb.GuestbookEntry) bool { return owned[g.EventID] }), nil
}

func (m *MemoryStore) CountSessionsByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountSessionsByUser", userID); err != nil {
		return 0, err
	}
	return countWhere(m.data.sessions, func(s gallerydb.Session) bool { return s.UserID == userID }), nil
}

func (m *MemoryStore) CountAccountsByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountAccountsByUser", userID); err != nil {
		return 0, err
	}
	return countWhere(m.data.accounts, func(a gallerydb.Account) bool { return a.UserID == userID }), nil
}

func (m *MemoryStore) CountVerificationsByIdentifier(_ context.Context, identifier string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountVerificationsByIdentifier", identifier); err != nil {
		return 0, err
	}
	return countWhere(m.data.verifications, func(v gallerydb.Verification) bool {
		return strings.EqualFold(v.Identifier, identifier)
	}), nil
}

func (m *MemoryStore) CountMembersByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountMembersByUser", userID); err != nil {
		return 0, err
	}
	return countWhere(m.data.members, func(mb gallerydb.Member) bool { return mb.UserID == userID }), nil
}

func (m *MemoryStore) CountInvitationsByInviter(_ context.Context, inviterID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CountInvitationsByInviter", inviterID); err != nil {
		return 0, err
	}
	return countWhere(m.data.invitations, func(i gallerydb.Invitation) bool { return i.InviterID == inviterID }), nil
}

func (m *MemoryStore) DeleteGuestbookEntriesByOwner(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteGuestbookEntriesByOwner", userID); err != nil {
		return 0, err
	}
	owned := m.data.eventsOwnedBy(userID)
	return deleteWhere(m.data.guestbook, func(g gallerydb.GuestbookEntry) bool { return owned[g.EventID] }), nil
}

func (m *MemoryStore) DeleteUploadsByOwner(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteUploadsByOwner", userID); err != nil {
		return 0, err
	}
	owned := m.data.eventsOwnedBy(userID)
	return deleteWhere(m.data.uploads, func(u gallerydb.Upload) bool { return owned[u.EventID] }), nil
}

func (m *MemoryStore) DeleteAlbumsByOwner(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteAlbumsByOwner", userID); err != nil {
		return 0, err
	}
	owned := m.data.eventsOwnedBy(userID)
	var n int64
	for id, a := range m.data.albums {
		if owned[a.EventID] {
			m.data.deleteAlbumRow(id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteEventsByOwner(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteEventsByOwner", userID); err != nil {
		return 0, err
	}
	var n int64
	for id := range m.data.eventsOwnedBy(userID) {
		m.data.deleteEventRow(id)
		n++
	}
	return n, nil
}

func (m *MemoryStore) DeleteVerificationsByIdentifier(_ context.Context, identifier string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteVerificationsByIdentifier", identifier); err != nil {
		return 0, err
	}
	return deleteWhere(m.data.verifications, func(v gallerydb.Verification) bool {
		return strings.EqualFold(v.Identifier, identifier)
	}), nil
}

func (m *MemoryStore) DeleteInvitationsByInviter(_ context.Context, inviterID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteInvitationsByInviter", inviterID); err != nil {
		return 0, err
	}
	return deleteWhere(m.data.invitations, func(i gallerydb.Invitation) bool { return i.InviterID == inviterID }), nil
}

func (m *MemoryStore) DeleteInvitationsByEmail(_ context.Context, email string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteInvitationsByEmail", email); err != nil {
		return 0, err
	}
	return deleteWhere(m.data.invitations, func(i gallerydb.Invitation) bool { return strings.EqualFold(i.Email, email) }), nil
}

func (m *MemoryStore) DeleteMembersByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteMembersByUser", userID); err != nil {
		return 0, err
	}
	return deleteWhere(m.data.members, func(mb gallerydb.Member) bool { return mb.UserID == userID }), nil
}

func (m *MemoryStore) DeleteAccountsByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteAccountsByUser", userID); err != nil {
		return 0, err
	}
	return deleteWhere(m.data.accounts, func(a gallerydb.Account) bool { return a.UserID == userID }), nil
}

func (m *MemoryStore) DeleteSessionsByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteSessionsByUser", userID); err != nil {
		return 0, err
	}
	return deleteWhere(m.data.sessions, func(s gallerydb.Session) bool { return s.UserID == userID }), nil
}

// DeleteUser applies the users FK cascades to every referencing table.
func (m *MemoryStore) DeleteUser(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteUser", id); err != nil {
		return 0, err
	}
	if _, ok := m.data.users[id]; !ok {
		return 0, nil
	}
	delete(m.data.users, id)
	deleteWhere(m.data.sessions, func(s gallerydb.Session) bool { return s.UserID == id })
	deleteWhere(m.data.accounts, func(a gallerydb.Account) bool { return a.UserID == id })
	deleteWhere(m.data.members, func(mb gallerydb.Member) bool { return mb.UserID == id })
	deleteWhere(m.data.invitations, func(i gallerydb.Invitation) bool { return i.InviterID == id })
	for eventID := range m.data.eventsOwnedBy(id) {
		m.data.deleteEventRow(eventID)
	}
	return 1, nil
}

// Fixtures.

func (m *MemoryStore) CreateUser(_ context.Context, arg gallerydb.CreateUserParams) (gallerydb.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateUser", arg); err != nil {
		return gallerydb.User{}, err
	}
	if _, dup := m.data.users[arg.ID]; dup {
		return gallerydb.User{}, fmt.Errorf("%w: users_pkey", ErrCheckViolation)
	}
	for _, u := range m.data.users {
		if strings.EqualFold(u.Email, arg.Email) {
			return gallerydb.User{}, fmt.Errorf("%w: users_email_idx", ErrCheckViolation)
		}
	}
	created := orNow(arg.CreatedAt)
	u := gallerydb.User{
		ID:            arg.ID,
		Name:          arg.Name,
		Email:         arg.Email,
		EmailVerified: arg.EmailVerified,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	m.data.users[u.ID] = u
	return u, nil
}

// InsertUserUnchecked adds a user row bypassing the unique email index, to
// model residue left behind by an identity provider with looser rules.
func (m *MemoryStore) InsertUserUnchecked(u gallerydb.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.users[u.ID] = u
}

func (m *MemoryStore) requireUser(id, constraint string) error {
	if _, ok := m.data.users[id]; !ok {
		return fmt.Errorf("%w: %s", ErrCheckViolation, constraint)
	}
	return nil
}

func (m *MemoryStore) CreateSession(_ context.Context, arg gallerydb.CreateSessionParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateSession", arg); err != nil {
		return err
	}
	if err := m.requireUser(arg.UserID, "sessions_user_id_fkey"); err != nil {
		return err
	}
	m.data.sessions[arg.ID] = gallerydb.Session{ID: arg.ID, UserID: arg.UserID, Token: arg.Token, ExpiresAt: arg.ExpiresAt}
	return nil
}

func (m *MemoryStore) CreateAccount(_ context.Context, arg gallerydb.CreateAccountParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateAccount", arg); err != nil {
		return err
	}
	if err := m.requireUser(arg.UserID, "accounts_user_id_fkey"); err != nil {
		return err
	}
	m.data.accounts[arg.ID] = gallerydb.Account{ID: arg.ID, UserID: arg.UserID, ProviderID: arg.ProviderID, AccountID: arg.AccountID}
	return nil
}

func (m *MemoryStore) CreateVerification(_ context.Context, arg gallerydb.CreateVerificationParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateVerification", arg); err != nil {
		return err
	}
	m.data.verifications[arg.ID] = gallerydb.Verification{ID: arg.ID, Identifier: arg.Identifier, Value: arg.Value, ExpiresAt: arg.ExpiresAt}
	return nil
}

func (m *MemoryStore) CreateOrganization(_ context.Context, arg gallerydb.CreateOrganizationParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateOrganization", arg); err != nil {
		return err
	}
	m.data.organizations[arg.ID] = gallerydb.Organization{ID: arg.ID, Name: arg.Name}
	return nil
}

func (m *MemoryStore) CreateMember(_ context.Context, arg gallerydb.CreateMemberParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateMember", arg); err != nil {
		return err
	}
	if err := m.requireUser(arg.UserID, "members_user_id_fkey"); err != nil {
		return err
	}
	m.data.members[arg.ID] = gallerydb.Member{ID: arg.ID, OrganizationID: arg.OrganizationID, UserID: arg.UserID, Role: arg.Role}
	return nil
}

func (m *MemoryStore) CreateInvitation(_ context.Context, arg gallerydb.CreateInvitationParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateInvitation", arg); err != nil {
		return err
	}
	if err := m.requireUser(arg.InviterID, "invitations_inviter_id_fkey"); err != nil {
		return err
	}
	m.data.invitations[arg.ID] = gallerydb.Invitation{
		ID:             arg.ID,
		OrganizationID: arg.OrganizationID,
		Email:          arg.Email,
		Role:           arg.Role,
		Status:         "pending",
		InviterID:      arg.InviterID,
		ExpiresAt:      arg.ExpiresAt,
	}
	return nil
}
