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

// Package gallerydbtest provides an in-memory gallerydb.StoreFull for unit
// tests. It mirrors the foreign-key cascades and CHECK constraints of the
// schema closely enough for lifecycle and teardown logic to be exercised
// without PostgreSQL.
package gallerydbtest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
)

// ErrCheckViolation is returned where PostgreSQL would reject a write with a
// CHECK or foreign-key violation.
var ErrCheckViolation = errors.New("constraint violation")

type state struct {
	users          map[string]gallerydb.User
	sessions       map[string]gallerydb.Session
	accounts       map[string]gallerydb.Account
	verifications  map[string]gallerydb.Verification
	organizations  map[string]gallerydb.Organization
	members        map[string]gallerydb.Member
	invitations    map[string]gallerydb.Invitation
	events         map[uuid.UUID]gallerydb.Event
	albums         map[uuid.UUID]gallerydb.Album
	uploads        map[uuid.UUID]gallerydb.Upload
	guestbook      map[uuid.UUID]gallerydb.GuestbookEntry
	deletionEvents []gallerydb.DeletionEvent
}

func newState() state {
	return state{
		users:         map[string]gallerydb.User{},
		sessions:      map[string]gallerydb.Session{},
		accounts:      map[string]gallerydb.Account{},
		verifications: map[string]gallerydb.Verification{},
		organizations: map[string]gallerydb.Organization{},
		members:       map[string]gallerydb.Member{},
		invitations:   map[string]gallerydb.Invitation{},
		events:        map[uuid.UUID]gallerydb.Event{},
		albums:        map[uuid.UUID]gallerydb.Album{},
		uploads:       map[uuid.UUID]gallerydb.Upload{},
		guestbook:     map[uuid.UUID]gallerydb.GuestbookEntry{},
	}
}

func (s state) clone() state {
	return state{
		users:          maps.Clone(s.users),
		sessions:       maps.Clone(s.sessions),
		accounts:       maps.Clone(s.accounts),
		verifications:  maps.Clone(s.verifications),
		organizations:  maps.Clone(s.organizations),
		members:        maps.Clone(s.members),
		invitations:    maps.Clone(s.invitations),
		events:         maps.Clone(s.events),
		albums:         maps.Clone(s.albums),
		uploads:        maps.Clone(s.uploads),
		guestbook:      maps.Clone(s.guestbook),
		deletionEvents: slices.Clone(s.deletionEvents),
	}
}

// Hook is consulted before a method runs; a non-nil error aborts the call.
type Hook func(arg any) error

// MemoryStore is a gallerydb.StoreFull backed by maps.
type MemoryStore struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	data  state
	hooks map[string]Hook
	calls []string
	txns  int
}

var _ gallerydb.StoreFull = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  newState(),
		hooks: map[string]Hook{},
	}
}

// InjectError installs a hook for the named Querier method.
func (m *MemoryStore) InjectError(method string, hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[method] = hook
}

// FailAlways makes every call to method return err.
func (m *MemoryStore) FailAlways(method string, err error) {
	m.InjectError(method, func(any) error { return err })
}

// Calls returns the Querier methods invoked so far, in order.
func (m *MemoryStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// ResetCalls clears the call log.
func (m *MemoryStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Transactions returns how many transactions committed.
func (m *MemoryStore) Transactions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txns
}

func (m *MemoryStore) Close() {}

// ExecTx runs fn with all-or-nothing semantics: any error restores the state
// captured before fn started.
func (m *MemoryStore) ExecTx(ctx context.Context, fn func(gallerydb.Querier) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	snapshot := m.data.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.data = snapshot
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.txns++
	m.mu.Unlock()
	return nil
}

// enter records the call and runs any hook. The caller must hold mu.
func (m *MemoryStore) enter(method string, arg any) error {
	m.calls = append(m.calls, method)
	if hook, ok := m.hooks[method]; ok {
		return hook(arg)
	}
	return nil
}

// Snapshot accessors for assertions.

func (m *MemoryStore) Event(id uuid.UUID) (gallerydb.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data.events[id]
	return e, ok
}

func (m *MemoryStore) DeletionEvents() []gallerydb.DeletionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data.deletionEvents)
}

// RowCounts returns the number of rows per table.
func (m *MemoryStore) RowCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int{
		"users":             len(m.data.users),
		"sessions":          len(m.data.sessions),
		"accounts":          len(m.data.accounts),
		"verifications":     len(m.data.verifications),
		"organizations":     len(m.data.organizations),
		"members":           len(m.data.members),
		"invitations":       len(m.data.invitations),
		"events":            len(m.data.events),
		"albums":            len(m.data.albums),
		"uploads":           len(m.data.uploads),
		"guestbook_entries": len(m.data.guestbook),
		"deletion_events":   len(m.data.deletionEvents),
	}
}

func sortEvents(events []gallerydb.Event) []gallerydb.Event {
	slices.SortFunc(events, func(a, b gallerydb.Event) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return events
}

func sortUploads(uploads []gallerydb.Upload) []gallerydb.Upload {
	slices.SortFunc(uploads, func(a, b gallerydb.Upload) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return uploads
}

func (s *state) eventsOwnedBy(userID string) map[uuid.UUID]bool {
	owned := map[uuid.UUID]bool{}
	for id, e := range s.events {
		if e.UserID == userID {
			owned[id] = true
		}
	}
	return owned
}

// deleteEventRow applies the events FK actions: children cascade and audit
// rows keep their metadata but lose the reference.
func (s *state) deleteEventRow(id uuid.UUID) {
	delete(s.events, id)
	maps.DeleteFunc(s.albums, func(_ uuid.UUID, a gallerydb.Album) bool { return a.EventID == id })
	maps.DeleteFunc(s.uploads, func(_ uuid.UUID, u gallerydb.Upload) bool { return u.EventID == id })
	maps.DeleteFunc(s.guestbook, func(_ uuid.UUID, g gallerydb.GuestbookEntry) bool { return g.EventID == id })
	for i, d := range s.deletionEvents {
		if d.EventID != nil && *d.EventID == id {
			s.deletionEvents[i].EventID = nil
		}
	}
}

func (s *state) deleteAlbumRow(id uuid.UUID) {
	delete(s.albums, id)
	for uid, u := range s.uploads {
		if u.AlbumID != nil && *u.AlbumID == id {
			u.AlbumID = nil
			s.uploads[uid] = u
		}
	}
}

func checkTrashWindow(e gallerydb.Event) error {
	switch e.Status {
	case "active":
		if e.TrashedAt != nil || e.DeleteAt != nil {
			return fmt.Errorf("%w: events_trash_window_check", ErrCheckViolation)
		}
	case "trashed":
		if e.TrashedAt == nil || e.DeleteAt == nil || e.DeleteAt.Before(e.TrashedAt.Add(30*24*time.Hour)) {
			return fmt.Errorf("%w: events_trash_window_check", ErrCheckViolation)
		}
	default:
		return fmt.Errorf("%w: events_status_check", ErrCheckViolation)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func countWhere[K comparable, V any](m map[K]V, pred func(V) bool) int64 {
	var n int64
	for _, v := range m {
		if pred(v) {
			n++
		}
	}
	return n
}

func deleteWhere[K comparable, V any](m map[K]V, pred func(V) bool) int64 {
	before := len(m)
	maps.DeleteFunc(m, func(_ K, v V) bool { return pred(v) })
	return int64(before - len(m))
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

var errNoRows = pgx.ErrNoRows
