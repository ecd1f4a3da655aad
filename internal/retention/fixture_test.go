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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/gallerydb/gallerydbtest"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/clock"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage/cloudstoragetest"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
)

const (
	testBucket  = "media"
	testCDNBase = "https://cdn.test"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *gallerydbtest.MemoryStore
	objects *cloudstoragetest.MemoryClient
	clock   *clock.Stub
	sweeper *Sweeper
	owner   gallerydb.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   gallerydbtest.NewMemoryStore(),
		objects: cloudstoragetest.NewMemoryClient(),
		clock:   clock.NewStub(testNow),
	}
	gw := cloudstorage.NewGateway(f.objects, testBucket, cloudstorage.WithPublicURLBase(testCDNBase))
	runs := 0
	f.sweeper = New(f.store, gw, lifecycle.DefaultPolicy(),
		WithClock(f.clock),
		WithRunIDs(func() string { runs++; return "run-" + string(rune('0'+runs)) }),
	)
	f.owner = gallerydbtest.MustUser(t, f.store, "owner-1", "owner@example.com")
	return f
}

// trashedAt puts the event in the trash as if it had been trashed at at.
func (f *fixture) trashedAt(t *testing.T, eventID uuid.UUID, at time.Time) {
	t.Helper()
	n, err := f.store.TrashEvent(context.Background(), gallerydb.TrashEventParams{
		TrashedAt: at,
		DeleteAt:  at.Add(lifecycle.GracePeriod),
		UpdatedAt: at,
		ID:        eventID,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func (f *fixture) event(t *testing.T, id uuid.UUID) gallerydb.Event {
	t.Helper()
	e, ok := f.store.Event(id)
	require.True(t, ok, "event %s should exist", id)
	return e
}

func (f *fixture) history(t *testing.T, id uuid.UUID) []audit.Record {
	t.Helper()
	records, err := audit.History(context.Background(), f.store, id)
	require.NoError(t, err)
	return records
}

func mediaURL(eventID uuid.UUID, name string) string {
	return testCDNBase + "/" + cloudstorage.EventPrefix(eventID) + name
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}
