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

package testhelpers

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orlangure/gnomock"
	"github.com/orlangure/gnomock/preset/postgres"

	"github.com/cardinalhq/gallerykeeper/gallerydb"
	"github.com/cardinalhq/gallerykeeper/gallerydb/migrations"
)

const (
	containerUser     = "gallery"
	containerPassword = "gallery"
	containerDB       = "testing_gallerydb"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// baseConnString returns a connection string to a database the test may
// CREATE DATABASE from. GALLERYDB_TEST_HOST selects an existing server;
// otherwise a PostgreSQL container is started once per test binary.
func baseConnString(t *testing.T) string {
	t.Helper()

	if host := os.Getenv("GALLERYDB_TEST_HOST"); host != "" {
		port := getEnvOrDefault("GALLERYDB_TEST_PORT", "5432")
		user := getEnvOrDefault("GALLERYDB_TEST_USER", os.Getenv("USER"))
		baseDB := getEnvOrDefault("GALLERYDB_TEST_DBNAME", containerDB)
		if password := os.Getenv("GALLERYDB_TEST_PASSWORD"); password != "" {
			return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, baseDB)
		}
		return fmt.Sprintf("postgresql://%s@%s:%s/%s?sslmode=disable", user, host, port, baseDB)
	}

	containerOnce.Do(func() {
		p := postgres.Preset(
			postgres.WithUser(containerUser, containerPassword),
			postgres.WithDatabase(containerDB),
			postgres.WithVersion("16"),
		)
		c, err := gnomock.Start(p, gnomock.WithTimeout(2*time.Minute))
		if err != nil {
			containerErr = fmt.Errorf("failed to start postgres container: %w", err)
			return
		}
		// The container lives for the whole test binary; gnomock's cleaner
		// removes it when the process exits.
		containerURL = fmt.Sprintf("postgresql://%s:%s@%s/%s?sslmode=disable",
			containerUser, containerPassword, c.DefaultAddress(), containerDB)
	})
	if containerErr != nil {
		t.Skipf("PostgreSQL unavailable: %v", containerErr)
	}
	return containerURL
}

// SetupTestGalleryDB creates a clean gallerydb database with migrations
// applied. The store and database are removed with t.Cleanup.
func SetupTestGalleryDB(t *testing.T) *gallerydb.Store {
	t.Helper()

	ctx := context.Background()
	dbName := fmt.Sprintf("test_gallerydb_%d_%d", time.Now().Unix(), rand.Intn(10000))

	baseConnStr := baseConnString(t)
	basePool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to base database: %v", err)
	}

	// Create test database
	_, err = basePool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName))
	if err != nil {
		basePool.Close()
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}

	cfg, err := pgxpool.ParseConfig(baseConnStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	cfg.ConnConfig.Database = dbName
	testPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Run migrations
	if err := migrations.RunMigrationsUp(ctx, testPool); err != nil {
		testPool.Close()
		t.Fatalf("Failed to run gallerydb migrations: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		testPool.Close()

		// Drop test database
		_, err := basePool.Exec(context.Background(), fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
		if err != nil {
			slog.Error("Failed to drop test database", slog.String("dbName", dbName), slog.Any("error", err))
		}

		// Close base pool after cleanup
		basePool.Close()
	})

	return gallerydb.NewStore(testPool)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
