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

package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// ExpectedVersion is the highest migration embedded in this binary.
func ExpectedVersion() (uint, error) {
	return extractLatestMigrationVersion(migrationFiles)
}

// CheckVersion verifies that gallerydb is at the expected migration version.
// GALLERYDB_MIGRATION_CHECK_ENABLED=false disables the check entirely.
func CheckVersion(ctx context.Context, pool *pgxpool.Pool, options ...CheckOption) error {
	if !checkEnabledFromEnv() {
		slog.Debug("Migration version checking disabled for gallerydb")
		return nil
	}

	opts := DefaultCheckOptions()
	for _, option := range options {
		option(&opts)
	}
	if opts.Mode == CheckModeSkip {
		return nil
	}
	applyEnvironmentOverrides(&opts)

	expected, err := ExpectedVersion()
	if err != nil {
		return fmt.Errorf("failed to extract expected migration version: %w", err)
	}

	return waitForVersion(ctx, expected, opts, func() (uint, bool, error) {
		return currentVersion(pool)
	})
}

func checkEnabledFromEnv() bool {
	if val := os.Getenv("GALLERYDB_MIGRATION_CHECK_ENABLED"); val != "" {
		return strings.ToLower(val) == "true"
	}
	return true
}

func applyEnvironmentOverrides(opts *CheckOptions) {
	if val := os.Getenv("MIGRATION_CHECK_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			opts.Timeout = d
		}
	}
	if val := os.Getenv("MIGRATION_CHECK_RETRY_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			opts.RetryInterval = d
		}
	}
	if val := os.Getenv("MIGRATION_CHECK_ALLOW_DIRTY"); val != "" {
		opts.AllowDirty = strings.ToLower(val) == "true"
	}
}

// extractLatestMigrationVersion extracts the highest migration version from
// files named like "1760400000_initial.up.sql".
func extractLatestMigrationVersion(files fs.ReadDirFS) (uint, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return 0, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var maxVersion uint
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		maxVersion = max(maxVersion, uint(version))
	}

	if maxVersion == 0 {
		return 0, errors.New("no valid migration files found")
	}
	return maxVersion, nil
}

type versionFunc func() (version uint, dirty bool, err error)

func waitForVersion(ctx context.Context, expected uint, opts CheckOptions, current versionFunc) error {
	version, dirty, err := current()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty && !opts.AllowDirty {
		if opts.Mode != CheckModeWarn {
			return errors.New("gallerydb migration is in dirty state, please fix before proceeding")
		}
		slog.Warn("Database migration is in dirty state, but continuing anyway")
	}

	if version == expected {
		return nil
	}

	logger := slog.With(
		slog.Uint64("currentVersion", uint64(version)),
		slog.Uint64("expectedVersion", uint64(expected)))

	if version > expected {
		if opts.Mode == CheckModeWarn {
			logger.Warn("Database version is newer than expected, but continuing anyway")
			return nil
		}
		return fmt.Errorf("gallerydb version %d is newer than expected version %d - you may need to update the application",
			version, expected)
	}

	if opts.Mode == CheckModeWarn {
		logger.Warn("Database version is older than expected, but continuing anyway")
		return nil
	}

	deadline := time.Now().Add(opts.Timeout)
	ticker := time.NewTicker(opts.RetryInterval)
	defer ticker.Stop()

	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for gallerydb migrations: at version %d, expected %d", version, expected)
		}

		logger.Info("Waiting for migrations to complete", slog.Duration("remainingTimeout", time.Until(deadline)))

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for gallerydb migrations: %w", ctx.Err())
		case <-ticker.C:
		}

		version, _, err = current()
		if err != nil {
			return fmt.Errorf("failed to get current migration version: %w", err)
		}
		if version == expected {
			slog.Info("Migration version check passed", slog.Uint64("version", uint64(version)))
			return nil
		}
	}
}

// newMigrator builds a migrate instance over the embedded files. The
// returned func releases the database handles.
func newMigrator(pool *pgxpool.Pool) (*migrate.Migrate, func(), error) {
	sourceDriver, err := iofs.New(migrationFiles, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	dbDriver, err := pgx.WithInstance(sqlDB, &pgx.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to create pgx driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		_ = dbDriver.Close()
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, func() {
		_ = dbDriver.Close()
		_ = sqlDB.Close()
	}, nil
}

func currentVersion(pool *pgxpool.Pool) (uint, bool, error) {
	m, closeFn, err := newMigrator(pool)
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, dirty, nil
}
