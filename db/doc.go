// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

Open picks the driver for the configured type and pings with retries:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

Supported types are sqlite (modernc.org/sqlite), postgres (lib/pq) and
pgx (jackc/pgx stdlib). Every query in the repository uses $N
placeholders, which all three drivers accept.

# Schema Creation

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: polls and elections with lifecycle state
  - option: options and candidates, with their running vote count
  - vote: one row per voter per poll (UNIQUE poll_id, voter_id)
  - setting: system settings, one JSON document per section

# Relationships

	poll 1──* option
	poll 1──* vote
	option 1──* vote

All foreign keys use ON DELETE CASCADE.

# Errors

IsUniqueViolation recognises constraint failures from every driver, so
callers can map a duplicate vote to a domain error.
*/
package db
