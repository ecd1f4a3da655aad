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

// Package teardown permanently removes a user account and everything the
// user owns, across the relational store, object storage and the identity
// provider.
package teardown

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/internal/clock"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
	"github.com/cardinalhq/gallerykeeper/internal/identity"
)

var ErrUserNotFound = errors.New("user not found")

var teardownCounter metric.Int64Counter

func init() {
	meter := otel.Meter("github.com/cardinalhq/gallerykeeper/internal/teardown")

	var err error
	teardownCounter, err = meter.Int64Counter(
		"gallerykeeper.teardown.users_total",
		metric.WithDescription("Count of account teardowns by path and outcome"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create users_total counter: %w", err))
	}
}

// ObjectStore is the storage surface teardown needs; *cloudstorage.Gateway
// implements it.
type ObjectStore interface {
	EventPrefix(eventID uuid.UUID) string
	PurgePrefix(ctx context.Context, prefix string) cloudstorage.PurgeReport
	KeyForURL(url string) (string, bool)
	DeleteKeys(ctx context.Context, keys []string) cloudstorage.PurgeReport
}

var _ ObjectStore = (*cloudstorage.Gateway)(nil)

type Service struct {
	store    gallerydb.StoreFull
	objects  ObjectStore
	identity identity.Provider
	clock    clock.Clock
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// New builds a Service. objects may be nil when storage is not configured;
// a nil provider is treated as identity.Noop.
func New(store gallerydb.StoreFull, objects ObjectStore, provider identity.Provider, opts ...Option) *Service {
	if provider == nil {
		provider = identity.Noop{}
	}
	s := &Service{
		store:    store,
		objects:  objects,
		identity: provider,
		clock:    clock.Real{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type UserSummary struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type EventSummary struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Status    string    `json:"status" yaml:"status"`
	Plan      string    `json:"plan" yaml:"plan"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type EventsPreview struct {
	Count int            `json:"count" yaml:"count"`
	Items []EventSummary `json:"items" yaml:"items"`
}

type UploadsPreview struct {
	Count          int64    `json:"count" yaml:"count"`
	TotalSizeBytes int64    `json:"total_size_bytes" yaml:"total_size_bytes"`
	StorageKeys    []string `json:"storage_keys" yaml:"storage_keys"`
	// UnresolvedURLs could not be mapped to a key in the media bucket.
	UnresolvedURLs []string `json:"unresolved_urls,omitempty" yaml:"unresolved_urls,omitempty"`
}

type CountPreview struct {
	Count int64 `json:"count" yaml:"count"`
}

type IdentityPreview struct {
	Sessions        int64 `json:"sessions" yaml:"sessions"`
	Accounts        int64 `json:"accounts" yaml:"accounts"`
	Verifications   int64 `json:"verifications" yaml:"verifications"`
	Memberships     int64 `json:"memberships" yaml:"memberships"`
	InvitationsSent int64 `json:"invitations_sent" yaml:"invitations_sent"`
}

// DeletionPreview is what Execute would remove, computed without side
// effects.
type DeletionPreview struct {
	User              UserSummary     `json:"user" yaml:"user"`
	Events            EventsPreview   `json:"events" yaml:"events"`
	Uploads           UploadsPreview  `json:"uploads" yaml:"uploads"`
	Albums            CountPreview    `json:"albums" yaml:"albums"`
	GuestbookEntries  CountPreview    `json:"guestbook_entries" yaml:"guestbook_entries"`
	Identity          IdentityPreview `json:"identity" yaml:"identity"`
	StorageConfigured bool            `json:"storage_configured" yaml:"storage_configured"`
}

// DeletedCounts are the row counts removed per kind.
type DeletedCounts struct {
	Events           int64 `json:"events" yaml:"events"`
	Uploads          int64 `json:"uploads" yaml:"uploads"`
	Albums           int64 `json:"albums" yaml:"albums"`
	GuestbookEntries int64 `json:"guestbook_entries" yaml:"guestbook_entries"`
	Sessions         int64 `json:"sessions" yaml:"sessions"`
	Accounts         int64 `json:"accounts" yaml:"accounts"`
	Verifications    int64 `json:"verifications" yaml:"verifications"`
	Memberships      int64 `json:"memberships" yaml:"memberships"`
	InvitationsSent  int64 `json:"invitations_sent" yaml:"invitations_sent"`
	Users            int64 `json:"users" yaml:"users"`
}

func (c *DeletedCounts) add(o DeletedCounts) {
	c.Events += o.Events
	c.Uploads += o.Uploads
	c.Albums += o.Albums
	c.GuestbookEntries += o.GuestbookEntries
	c.Sessions += o.Sessions
	c.Accounts += o.Accounts
	c.Verifications += o.Verifications
	c.Memberships += o.Memberships
	c.InvitationsSent += o.InvitationsSent
	c.Users += o.Users
}

// Counts returns the preview in the shape of a DeletionResult summary.
func (p DeletionPreview) Counts() DeletedCounts {
	return DeletedCounts{
		Events:           int64(p.Events.Count),
		Uploads:          p.Uploads.Count,
		Albums:           p.Albums.Count,
		GuestbookEntries: p.GuestbookEntries.Count,
		Sessions:         p.Identity.Sessions,
		Accounts:         p.Identity.Accounts,
		Verifications:    p.Identity.Verifications,
		Memberships:      p.Identity.Memberships,
		InvitationsSent:  p.Identity.InvitationsSent,
		Users:            1,
	}
}

// Preview reports what deleting the user would remove. It only reads.
func (s *Service) Preview(ctx context.Context, userID string) (DeletionPreview, error) {
	user, err := s.store.GetUser(ctx, userID)
	if gallerydb.IsNotFound(err) {
		return DeletionPreview{}, ErrUserNotFound
	}
	if err != nil {
		return DeletionPreview{}, fmt.Errorf("load user: %w", err)
	}
	return s.previewUser(ctx, s.store, user)
}

func (s *Service) previewUser(ctx context.Context, q gallerydb.Querier, user gallerydb.User) (DeletionPreview, error) {
	p := DeletionPreview{
		User: UserSummary{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
		StorageConfigured: s.objects != nil,
	}

	events, err := q.ListEventsByOwner(ctx, user.ID)
	if err != nil {
		return p, fmt.Errorf("list events: %w", err)
	}
	p.Events.Count = len(events)
	p.Events.Items = make([]EventSummary, 0, len(events))
	for _, e := range events {
		p.Events.Items = append(p.Events.Items, EventSummary{
			ID:        e.ID,
			Name:      e.Name,
			Status:    e.Status,
			Plan:      e.Plan,
			CreatedAt: e.CreatedAt,
		})
	}

	summary, err := q.SummarizeUploadsByOwner(ctx, user.ID)
	if err != nil {
		return p, fmt.Errorf("summarize uploads: %w", err)
	}
	p.Uploads.Count = summary.UploadCount
	p.Uploads.TotalSizeBytes = summary.TotalSizeBytes

	urls, err := q.ListUploadURLsByOwner(ctx, user.ID)
	if err != nil {
		return p, fmt.Errorf("list upload urls: %w", err)
	}
	p.Uploads.StorageKeys, p.Uploads.UnresolvedURLs = s.resolveKeys(urls)

	counts := []struct {
		dst  *int64
		what string
		fn   func() (int64, error)
	}{
		{&p.Albums.Count, "albums", func() (int64, error) { return q.CountAlbumsByOwner(ctx, user.ID) }},
		{&p.GuestbookEntries.Count, "guestbook entries", func() (int64, error) { return q.CountGuestbookEntriesByOwner(ctx, user.ID) }},
		{&p.Identity.Sessions, "sessions", func() (int64, error) { return q.CountSessionsByUser(ctx, user.ID) }},
		{&p.Identity.Accounts, "accounts", func() (int64, error) { return q.CountAccountsByUser(ctx, user.ID) }},
		{&p.Identity.Verifications, "verifications", func() (int64, error) { return q.CountVerificationsByIdentifier(ctx, user.Email) }},
		{&p.Identity.Memberships, "memberships", func() (int64, error) { return q.CountMembersByUser(ctx, user.ID) }},
		{&p.Identity.InvitationsSent, "invitations", func() (int64, error) { return q.CountInvitationsByInviter(ctx, user.ID) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return p, fmt.Errorf("count %s: %w", c.what, err)
		}
		*c.dst = n
	}
	return p, nil
}

// resolveKeys maps upload URLs to unique storage keys, in first-seen order.
func (s *Service) resolveKeys(urls []string) (keys, unresolved []string) {
	keys = []string{}
	if s.objects == nil {
		return keys, nil
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, u := range urls {
		key, ok := s.objects.KeyForURL(u)
		if !ok {
			unresolved = append(unresolved, u)
			continue
		}
		if seen.Add(key) {
			keys = append(keys, key)
		}
	}
	return keys, slices.Clip(unresolved)
}
