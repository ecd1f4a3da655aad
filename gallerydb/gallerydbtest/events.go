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
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
)

// Events.

func (m *MemoryStore) GetEvent(_ context.Context, id uuid.UUID) (gallerydb.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetEvent", id); err != nil {
		return gallerydb.Event{}, err
	}
	e, ok := m.data.events[id]
	if !ok {
		return gallerydb.Event{}, errNoRows
	}
	return e, nil
}

func (m *MemoryStore) LockEvent(_ context.Context, id uuid.UUID) (gallerydb.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("LockEvent", id); err != nil {
		return gallerydb.Event{}, err
	}
	e, ok := m.data.events[id]
	if !ok {
		return gallerydb.Event{}, errNoRows
	}
	return e, nil
}

func (m *MemoryStore) ListTrashCandidates(_ context.Context, arg gallerydb.ListTrashCandidatesParams) ([]gallerydb.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListTrashCandidates", arg); err != nil {
		return nil, err
	}
	var out []gallerydb.Event
	for _, e := range m.data.events {
		if e.Status != "active" {
			continue
		}
		expired := e.IsPublished && e.DownloadWindowEnd != nil && e.DownloadWindowEnd.Before(arg.Now)
		oldFree := e.Plan == arg.FreePlan && e.CreatedAt.Before(arg.FreeCreatedBefore)
		if expired || oldFree {
			out = append(out, e)
		}
	}
	return sortEvents(out), nil
}

func (m *MemoryStore) TrashEvent(_ context.Context, arg gallerydb.TrashEventParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("TrashEvent", arg); err != nil {
		return 0, err
	}
	e, ok := m.data.events[arg.ID]
	if !ok || e.Status != "active" {
		return 0, nil
	}
	e.Status = "trashed"
	e.TrashedAt = ptr(arg.TrashedAt)
	e.DeleteAt = ptr(arg.DeleteAt)
	e.UpdatedAt = arg.UpdatedAt
	if err := checkTrashWindow(e); err != nil {
		return 0, err
	}
	m.data.events[arg.ID] = e
	return 1, nil
}

func (m *MemoryStore) ListPurgeCandidates(_ context.Context, now time.Time) ([]gallerydb.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListPurgeCandidates", now); err != nil {
		return nil, err
	}
	var out []gallerydb.Event
	for _, e := range m.data.events {
		if e.Status == "trashed" && e.DeleteAt != nil && e.DeleteAt.Before(now) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b gallerydb.Event) int {
		if c := a.DeleteAt.Compare(*b.DeleteAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (m *MemoryStore) RestoreEvent(_ context.Context, arg gallerydb.RestoreEventParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("RestoreEvent", arg); err != nil {
		return 0, err
	}
	e, ok := m.data.events[arg.ID]
	if !ok || e.Status != "trashed" {
		return 0, nil
	}
	e.Status = "active"
	e.TrashedAt = nil
	e.DeleteAt = nil
	e.UpdatedAt = arg.UpdatedAt
	m.data.events[arg.ID] = e
	return 1, nil
}

func (m *MemoryStore) DeleteEvent(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteEvent", id); err != nil {
		return 0, err
	}
	if _, ok := m.data.events[id]; !ok {
		return 0, nil
	}
	m.data.deleteEventRow(id)
	return 1, nil
}

func (m *MemoryStore) ListUploadURLsByEvent(_ context.Context, eventID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListUploadURLsByEvent", eventID); err != nil {
		return nil, err
	}
	var uploads []gallerydb.Upload
	for _, u := range m.data.uploads {
		if u.EventID == eventID {
			uploads = append(uploads, u)
		}
	}
	return uploadURLs(sortUploads(uploads)), nil
}

func uploadURLs(uploads []gallerydb.Upload) []string {
	var urls []string
	for _, u := range uploads {
		urls = append(urls, u.Url)
	}
	return urls
}

func (m *MemoryStore) DeleteGuestbookEntriesByEvent(_ context.Context, eventID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteGuestbookEntriesByEvent", eventID); err != nil {
		return 0, err
	}
	return deleteWhere(m.data.guestbook, func(g gallerydb.GuestbookEntry) bool { return g.EventID == eventID }), nil
}

func (m *MemoryStore) DeleteUploadsByEvent(_ context.Context, eventID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteUploadsByEvent", eventID); err != nil {
		return 0, err
	}
	return deleteWhere(m.data.uploads, func(u gallerydb.Upload) bool { return u.EventID == eventID }), nil
}

func (m *MemoryStore) DeleteAlbumsByEvent(_ context.Context, eventID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteAlbumsByEvent", eventID); err != nil {
		return 0, err
	}
	var n int64
	for id, a := range m.data.albums {
		if a.EventID == eventID {
			m.data.deleteAlbumRow(id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateEvent(_ context.Context, arg gallerydb.CreateEventParams) (gallerydb.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateEvent", arg); err != nil {
		return gallerydb.Event{}, err
	}
	if _, ok := m.data.users[arg.UserID]; !ok {
		return gallerydb.Event{}, fmt.Errorf("%w: events_user_id_fkey", ErrCheckViolation)
	}
	if _, dup := m.data.events[arg.ID]; dup {
		return gallerydb.Event{}, fmt.Errorf("%w: events_pkey", ErrCheckViolation)
	}
	plan := arg.Plan
	if plan == "" {
		plan = "free"
	}
	created := orNow(arg.CreatedAt)
	e := gallerydb.Event{
		ID:                arg.ID,
		UserID:            arg.UserID,
		OrganizationID:    arg.OrganizationID,
		Name:              arg.Name,
		Plan:              plan,
		IsPublished:       arg.IsPublished,
		DownloadWindowEnd: arg.DownloadWindowEnd,
		Status:            "active",
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	m.data.events[e.ID] = e
	return e, nil
}

func (m *MemoryStore) CreateAlbum(_ context.Context, arg gallerydb.CreateAlbumParams) (gallerydb.Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateAlbum", arg); err != nil {
		return gallerydb.Album{}, err
	}
	if _, ok := m.data.events[arg.EventID]; !ok {
		return gallerydb.Album{}, fmt.Errorf("%w: albums_event_id_fkey", ErrCheckViolation)
	}
	a := gallerydb.Album{ID: arg.ID, EventID: arg.EventID, Name: arg.Name, CreatedAt: orNow(arg.CreatedAt)}
	m.data.albums[a.ID] = a
	return a, nil
}

func (m *MemoryStore) CreateUpload(_ context.Context, arg gallerydb.CreateUploadParams) (gallerydb.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateUpload", arg); err != nil {
		return gallerydb.Upload{}, err
	}
	if _, ok := m.data.events[arg.EventID]; !ok {
		return gallerydb.Upload{}, fmt.Errorf("%w: uploads_event_id_fkey", ErrCheckViolation)
	}
	u := gallerydb.Upload{
		ID:          arg.ID,
		EventID:     arg.EventID,
		AlbumID:     arg.AlbumID,
		Url:         arg.Url,
		SizeBytes:   arg.SizeBytes,
		ContentType: arg.ContentType,
		IsApproved:  arg.IsApproved,
		CreatedAt:   orNow(arg.CreatedAt),
	}
	m.data.uploads[u.ID] = u
	return u, nil
}

func (m *MemoryStore) CreateGuestbookEntry(_ context.Context, arg gallerydb.CreateGuestbookEntryParams) (gallerydb.GuestbookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateGuestbookEntry", arg); err != nil {
		return gallerydb.GuestbookEntry{}, err
	}
	if _, ok := m.data.events[arg.EventID]; !ok {
		return gallerydb.GuestbookEntry{}, fmt.Errorf("%w: guestbook_entries_event_id_fkey", ErrCheckViolation)
	}
	g := gallerydb.GuestbookEntry{
		ID:         arg.ID,
		EventID:    arg.EventID,
		AuthorName: arg.AuthorName,
		Message:    arg.Message,
		CreatedAt:  orNow(arg.CreatedAt),
	}
	m.data.guestbook[g.ID] = g
	return g, nil
}

// Audit.

func (m *MemoryStore) InsertDeletionEvent(_ context.Context, arg gallerydb.InsertDeletionEventParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("InsertDeletionEvent", arg); err != nil {
		return err
	}
	switch arg.Action {
	case "trashed", "restored", "deleted":
	default:
		return fmt.Errorf("%w: deletion_events_action_check", ErrCheckViolation)
	}
	if arg.EventID != nil {
		if _, ok := m.data.events[*arg.EventID]; !ok {
			return fmt.Errorf("%w: deletion_events_event_id_fkey", ErrCheckViolation)
		}
	}
	if !json.Valid(arg.Metadata) {
		return fmt.Errorf("%w: invalid jsonb", ErrCheckViolation)
	}
	m.data.deletionEvents = append(m.data.deletionEvents, gallerydb.DeletionEvent{
		ID:        arg.ID,
		EventID:   arg.EventID,
		Action:    arg.Action,
		Reason:    arg.Reason,
		Metadata:  slices.Clone(arg.Metadata),
		CreatedAt: orNow(arg.CreatedAt),
	})
	return nil
}

func (m *MemoryStore) ListDeletionEventsByEvent(_ context.Context, eventID uuid.UUID) ([]gallerydb.DeletionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListDeletionEventsByEvent", eventID); err != nil {
		return nil, err
	}
	var out []gallerydb.DeletionEvent
	for _, d := range m.data.deletionEvents {
		if (d.EventID != nil && *d.EventID == eventID) || metadataEventID(d.Metadata) == eventID.String() {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b gallerydb.DeletionEvent) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func metadataEventID(raw []byte) string {
	var meta struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return ""
	}
	return meta.EventID
}
