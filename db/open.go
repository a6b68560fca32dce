// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/matryer/try"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/votehub/cliparse"
)

// Ping retry policy used at startup
const (
	pingAttempts = 5
	pingDelay    = time.Second
)

// DriverName maps a configured database type to its database/sql driver
func DriverName(dbType string) (string, error) {
	switch dbType {
	case cliparse.DatabaseSQLite:
		return "sqlite", nil
	case cliparse.DatabasePostgres:
		return "postgres", nil
	case cliparse.DatabasePGX:
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported database type %q", dbType)
}

// Open connects to the configured database and verifies the connection.
// SQLite connections are limited to one so in-memory databases and
// pragmas apply to every query.
func Open(ctx context.Context, dbType, url string) (*sql.DB, error) {
	driver, err := DriverName(dbType)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	if dbType == cliparse.DatabaseSQLite {
		conn.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
			if _, err := conn.ExecContext(ctx, pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	if err := ping(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// ping retries while the database server comes up
func ping(ctx context.Context, conn *sql.DB) error {
	err := try.Do(func(attempt int) (bool, error) {
		err := conn.PingContext(ctx)
		if err != nil && attempt < pingAttempts {
			slog.Warn("database ping failed, retrying", "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(pingDelay):
			}
		}
		return attempt < pingAttempts, err
	})
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
