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

package cloudstorage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage"
	"github.com/cardinalhq/gallerykeeper/internal/cloudstorage/cloudstoragetest"
	"github.com/cardinalhq/gallerykeeper/internal/storageprofile"
)

func TestEventPrefix(t *testing.T) {
	id := uuid.MustParse("7b0c8f36-2a3e-4c5f-9d0e-1f2a3b4c5d6e")
	assert.Equal(t, "events/7b0c8f36-2a3e-4c5f-9d0e-1f2a3b4c5d6e/", cloudstorage.EventPrefix(id))
}

func TestGateway_PurgePrefixBatchesAt1000(t *testing.T) {
	ctx := context.Background()
	mem := cloudstoragetest.NewMemoryClient()
	eventID := uuid.New()
	prefix := cloudstorage.EventPrefix(eventID)
	for i := range 2300 {
		mem.Put("media", fmt.Sprintf("%s%05d.jpg", prefix, i))
	}
	mem.Put("media", "events/other/keep.jpg")

	g := cloudstorage.NewGateway(mem, "media", cloudstorage.WithDeleteConcurrency(2))
	report := g.PurgePrefix(ctx, prefix)

	require.True(t, report.OK(), "%+v", report.Err)
	assert.Equal(t, 2300, report.Listed)
	assert.Equal(t, 2300, report.Deleted)
	assert.ElementsMatch(t, []int{1000, 1000, 300}, mem.BatchSizes())
	assert.Equal(t, []string{"events/other/keep.jpg"}, mem.Keys("media"))
}

func TestGateway_PurgePrefixReportsFailures(t *testing.T) {
	ctx := context.Background()
	mem := cloudstoragetest.NewMemoryClient()
	mem.Put("media", "events/e1/a.jpg", "events/e1/b.jpg")
	mem.FailKey("events/e1/b.jpg", errors.New("denied"))

	report := cloudstorage.NewGateway(mem, "media").PurgePrefix(ctx, "events/e1/")
	assert.False(t, report.OK())
	assert.Equal(t, 2, report.Listed)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []string{"events/e1/b.jpg"}, report.Failed)
	assert.NoError(t, report.Err)
}

func TestGateway_PurgePrefixListError(t *testing.T) {
	mem := cloudstoragetest.NewMemoryClient()
	boom := errors.New("list unavailable")
	mem.SetListError(boom)

	report := cloudstorage.NewGateway(mem, "media").PurgePrefix(context.Background(), "events/e1/")
	assert.ErrorIs(t, report.Err, boom)
	assert.Zero(t, report.Deleted)
}

func TestGateway_DeleteKeysEmpty(t *testing.T) {
	mem := cloudstoragetest.NewMemoryClient()
	report := cloudstorage.NewGateway(mem, "media").DeleteKeys(context.Background(), nil)
	assert.True(t, report.OK())
	assert.Empty(t, mem.BatchSizes())
}

func TestGateway_DeleteKey(t *testing.T) {
	mem := cloudstoragetest.NewMemoryClient()
	mem.Put("media", "events/e1/a.jpg")
	g := cloudstorage.NewGateway(mem, "media")

	require.NoError(t, g.DeleteKey(context.Background(), "events/e1/a.jpg"))
	require.NoError(t, g.DeleteKey(context.Background(), "events/e1/missing.jpg"))
	assert.Empty(t, mem.Keys("media"))

	boom := errors.New("denied")
	mem.FailKey("events/e1/x.jpg", boom)
	assert.ErrorIs(t, g.DeleteKey(context.Background(), "events/e1/x.jpg"), boom)
}

func TestGateway_KeyForURL(t *testing.T) {
	withBase := cloudstorage.NewGateway(nil, "media", cloudstorage.WithPublicURLBase("https://cdn.example.com/"))
	noBase := cloudstorage.NewGateway(nil, "media")

	tests := []struct {
		name    string
		g       *cloudstorage.Gateway
		url     string
		wantKey string
		wantOK  bool
	}{
		{"under base", withBase, "https://cdn.example.com/events/e1/a.jpg", "events/e1/a.jpg", true},
		{"under base with query", withBase, "https://cdn.example.com/events/e1/a.jpg?v=2", "events/e1/a.jpg", true},
		{"escaped", withBase, "https://cdn.example.com/events/e1/my%20photo.jpg", "events/e1/my photo.jpg", true},
		{"foreign host with base", withBase, "https://other.example.com/events/e1/a.jpg", "", false},
		{"bare key", withBase, "events/e1/a.jpg", "events/e1/a.jpg", true},
		{"s3 url", withBase, "s3://media/events/e1/a.jpg", "events/e1/a.jpg", true},
		{"s3 url other bucket", withBase, "s3://other/events/e1/a.jpg", "", false},
		{"virtual host", noBase, "https://media.s3.amazonaws.com/events/e1/a.jpg", "events/e1/a.jpg", true},
		{"path style", noBase, "https://s3.us-east-1.amazonaws.com/media/events/e1/a.jpg", "events/e1/a.jpg", true},
		{"empty", noBase, "  ", "", false},
		{"directory", noBase, "https://cdn.example.com/events/", "", false},
		{"unsupported scheme", noBase, "ftp://media/events/e1/a.jpg", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := tt.g.KeyForURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

type stubProvider struct {
	client cloudstorage.Client
	err    error
}

func (p stubProvider) NewClient(context.Context, storageprofile.StorageProfile) (cloudstorage.Client, error) {
	return p.client, p.err
}

func TestNewGatewayForProfile(t *testing.T) {
	ctx := context.Background()

	_, err := cloudstorage.NewGatewayForProfile(ctx, stubProvider{}, storageprofile.StorageProfile{})
	assert.ErrorIs(t, err, storageprofile.ErrNotConfigured)

	mem := cloudstoragetest.NewMemoryClient()
	g, err := cloudstorage.NewGatewayForProfile(ctx, stubProvider{client: mem}, storageprofile.StorageProfile{
		CloudProvider: storageprofile.ProviderAWS,
		Bucket:        "media",
		PublicURLBase: "https://cdn.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "media", g.Bucket())
	key, ok := g.KeyForURL("https://cdn.example.com/events/e1/a.jpg")
	assert.True(t, ok)
	assert.Equal(t, "events/e1/a.jpg", key)
}

func TestCloudManagers_LocalProvider(t *testing.T) {
	root := t.TempDir()
	client, err := cloudstorage.NewCloudManagers().NewClient(context.Background(), storageprofile.StorageProfile{
		CloudProvider: storageprofile.ProviderLocal,
		Bucket:        "media",
		LocalRoot:     root,
	})
	require.NoError(t, err)
	keys, err := client.ListObjects(context.Background(), "media", "events/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCloudManagers_RejectsInvalidProfile(t *testing.T) {
	_, err := cloudstorage.NewCloudManagers().NewClient(context.Background(), storageprofile.StorageProfile{CloudProvider: "ftp", Bucket: "media"})
	assert.ErrorContains(t, err, "unsupported")
}
