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

package cloudstorage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeObject(t *testing.T, base, bucket, key string) {
	t.Helper()
	p := filepath.Join(base, bucket, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
}

func TestFileClient_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	writeObject(t, base, "media", "events/e1/a.jpg")
	writeObject(t, base, "media", "events/e1/thumbs/a.jpg")
	writeObject(t, base, "media", "events/e2/b.jpg")

	c := NewFileClient(base)
	keys, err := c.ListObjects(ctx, "media", "events/e1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"events/e1/a.jpg", "events/e1/thumbs/a.jpg"}, keys)

	failed, err := c.DeleteObjects(ctx, "media", keys)
	require.NoError(t, err)
	assert.Empty(t, failed)

	keys, err = c.ListObjects(ctx, "media", "events/")
	require.NoError(t, err)
	assert.Equal(t, []string{"events/e2/b.jpg"}, keys)
}

func TestFileClient_MissingBucketAndKey(t *testing.T) {
	ctx := context.Background()
	c := NewFileClient(t.TempDir())

	keys, err := c.ListObjects(ctx, "nope", "")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.NoError(t, c.DeleteObject(ctx, "nope", "events/e1/a.jpg"))
}

func TestFileClient_RejectsEscapingKey(t *testing.T) {
	base := t.TempDir()
	writeObject(t, base, "other", "secret.txt")
	c := NewFileClient(base)

	err := c.DeleteObject(context.Background(), "media", "../other/secret.txt")
	assert.ErrorContains(t, err, "escapes")
	_, statErr := os.Stat(filepath.Join(base, "other", "secret.txt"))
	assert.NoError(t, statErr)
}
