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

package gallerydb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxotel"

	"github.com/cardinalhq/gallerykeeper/gallerydb/migrations"
	"github.com/cardinalhq/gallerykeeper/internal/dbopen"
)

// NewConnectionPool creates a new connection pool
// using the PostgreSQL connection string provided, and
// using pgx v5.
func NewConnectionPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = applicationName(cfg.ConnConfig.RuntimeParams["application_name"])
	cfg.ConnConfig.Tracer = &pgxotel.QueryTracer{
		Name: "gallerydb",
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

func applicationName(current string) string {
	if current != "" {
		return current
	}
	return "gallerykeeper"
}

// Connect opens a pool from the GALLERYDB_* environment and verifies the
// schema is at the version embedded in this binary.
func Connect(ctx context.Context, opts ...dbopen.Options) (*pgxpool.Pool, error) {
	connectionString, err := dbopen.GetDatabaseURLFromEnv("GALLERYDB")
	if err != nil {
		return nil, errors.Join(dbopen.ErrDatabaseNotConfigured, fmt.Errorf("failed to get GALLERYDB connection string: %w", err))
	}

	pool, err := NewConnectionPool(ctx, connectionString)
	if err != nil {
		return nil, err
	}

	var checkOptions []migrations.CheckOption
	if len(opts) > 0 {
		checkOptions = opts[0].MigrationCheckOptions
	}

	if err := migrations.CheckVersion(ctx, pool, checkOptions...); err != nil {
		pool.Close()
		return nil, fmt.Errorf("GALLERYDB migration version check failed: %w", err)
	}

	return pool, nil
}

// OpenStore connects and wraps the pool in a Store.
func OpenStore(ctx context.Context, opts ...dbopen.Options) (*Store, error) {
	pool, err := Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return NewStore(pool), nil
}
