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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/gallerykeeper/internal/storageprofile"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "free", cfg.Retention.FreePlan)
	assert.Equal(t, time.Hour, cfg.Retention.SweepInterval)
	assert.Equal(t, 15*time.Minute, cfg.Retention.RunTimeout)
	assert.Equal(t, 8, cfg.Storage.DeleteConcurrency)
	assert.Equal(t, 10*time.Second, cfg.Identity.Timeout)
	assert.False(t, cfg.Storage.Profile().Configured())
	assert.Empty(t, cfg.Admin.Emails)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GALLERYKEEPER_STORAGE_PROVIDER", "aws")
	t.Setenv("GALLERYKEEPER_STORAGE_BUCKET", "gallery-media")
	t.Setenv("GALLERYKEEPER_STORAGE_REGION", "us-east-2")
	t.Setenv("GALLERYKEEPER_STORAGE_USE_PATH_STYLE", "true")
	t.Setenv("GALLERYKEEPER_STORAGE_DELETE_CONCURRENCY", "3")
	t.Setenv("GALLERYKEEPER_RETENTION_SWEEP_INTERVAL", "30m")
	t.Setenv("GALLERYKEEPER_IDENTITY_ADMIN_URL", "https://auth.internal")
	t.Setenv("GALLERYKEEPER_ADMIN_EMAILS", "ops@example.com,Root@Example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, storageprofile.StorageProfile{
		CloudProvider: "aws",
		Bucket:        "gallery-media",
		Region:        "us-east-2",
		UsePathStyle:  true,
	}, cfg.Storage.Profile())
	assert.Equal(t, 3, cfg.Storage.DeleteConcurrency)
	assert.Equal(t, 30*time.Minute, cfg.Retention.SweepInterval)
	assert.Equal(t, "https://auth.internal", cfg.Identity.AdminURL)
	assert.Equal(t, []string{"ops@example.com", "Root@Example.com"}, cfg.Admin.Emails)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
retention:
  free_plan: hobby
storage:
  provider: local
  local_root: /var/lib/gallery
  bucket: media
admin:
  emails:
    - admin@example.com
`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "hobby", cfg.Retention.Policy().FreePlan)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.Equal(t, "/var/lib/gallery", cfg.Storage.LocalRoot)
	assert.Equal(t, []string{"admin@example.com"}, cfg.Admin.Emails)
}

func TestIsAdmin(t *testing.T) {
	a := AdminConfig{Emails: []string{" Ops@Example.com ", ""}}
	tests := []struct {
		email string
		want  bool
	}{
		{"ops@example.com", true},
		{"OPS@EXAMPLE.COM", true},
		{"other@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, a.IsAdmin(tt.email))
		})
	}
	assert.False(t, AdminConfig{}.IsAdmin("ops@example.com"))
}
