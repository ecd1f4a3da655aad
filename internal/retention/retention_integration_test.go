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

package retention

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/gallerydb/gallerydbtest"
	"github.com/cardinalhq/gallerykeeper/internal/audit"
	"github.com/cardinalhq/gallerykeeper/internal/clock"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage/cloudstoragetest"
	"github.com/cardinalhq/gallerykeeper/internal/lifecycle"
	"github.com/cardinalhq/gallerykeeper/testhelpers"
)

func TestLifecycleAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.SetupTestGalleryDB(t)
	objects := cloudstoragetest.NewMemoryClient()
	gw := cloudstorage.NewGateway(objects, testBucket, cloudstorage.WithPublicURLBase(testCDNBase))
	clk := clock.NewStub(testNow)
	sw := New(store, gw, lifecycle.DefaultPolicy(), WithClock(clk))

	owner := gallerydbtest.MustUser(t, store, "owner-1", "owner@example.com")
	e := gallerydbtest.MustEvent(t, store, owner.ID, gallerydbtest.WithPublishedUntil(daysAgo(1)))
	gallerydbtest.MustAlbum(t, store, e.ID)
	gallerydbtest.MustUpload(t, store, e.ID, mediaURL(e.ID, "a.jpg"), 100)
	objects.Put(testBucket, cloudstorage.EventPrefix(e.ID)+"a.jpg", cloudstorage.EventPrefix(e.ID)+"thumb.jpg")

	res := sw.RunTrashSweep(ctx)
	require.True(t, res.Success, res.Errors)
	assert.Equal(t, 1, res.Processed)

	trashed, err := store.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, string(lifecycle.StatusTrashed), trashed.Status)
	require.NotNil(t, trashed.DeleteAt)
	assert.True(t, trashed.DeleteAt.Equal(testNow.Add(lifecycle.GracePeriod)))

	res = sw.RunPermanentDeleteSweep(ctx)
	assert.Zero(t, res.Processed, "grace period has not passed")

	clk.Advance(lifecycle.GracePeriod + 1)
	res = sw.RunPermanentDeleteSweep(ctx)
	require.True(t, res.Success, res.Errors)
	assert.Equal(t, 1, res.Processed)

	_, err = store.GetEvent(ctx, e.ID)
	assert.True(t, gallerydb.IsNotFound(err))
	assert.Empty(t, objects.Keys(testBucket))

	records, err := audit.History(ctx, store, e.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, audit.ActionTrashed, records[0].Action)
	assert.Equal(t, audit.ActionDeleted, records[1].Action)
	assert.True(t, records[1].Detached)
}

func TestOverlappingTrashSweepsAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.SetupTestGalleryDB(t)
	owner := gallerydbtest.MustUser(t, store, "owner-1", "owner@example.com")
	var events []gallerydb.Event
	for range 5 {
		events = append(events, gallerydbtest.MustEvent(t, store, owner.ID, gallerydbtest.WithPublishedUntil(daysAgo(2))))
	}

	var wg sync.WaitGroup
	results := make([]SweepResult, 3)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sw := New(store, nil, lifecycle.DefaultPolicy(), WithClock(clock.NewStub(testNow)))
			results[i] = sw.RunTrashSweep(ctx)
		}()
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		assert.True(t, r.Success, r.Errors)
		total += r.Processed
	}
	assert.Equal(t, len(events), total, "each event is trashed exactly once")

	for _, e := range events {
		records, err := audit.History(ctx, store, e.ID)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	}
}
