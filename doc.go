// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the votehub API server.

votehub hosts single-choice polls and elections. Voters pick one option,
everyone sees live totals, percentages and a ranking, and administrators
manage the lifecycle (active, paused, ended) of each poll.

# Starting the Server

The server reads CLI flags, then a dotenv file, then the environment:

	ADMIN_KEY_SALT=... DATABASE_URL=votehub.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

Print the admin key for an admin ID and exit:

	go run . --issue-admin-key alice

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default), postgres or pgx
  - VOTER_IP_SALT (--ip-salt): Secret for hashing voter IPs (default: admin salt)
  - --env: Dotenv file (default: .env)

# Architecture

  - handlers: HTTP request handlers (polls, voting, results, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain types, lifecycle rules, form drafts and settings
  - store: Backend operations over database/sql
  - tally: Result aggregation and live recomputation
  - realtime: Change notifications (in-process hub, PostgreSQL bridge)
  - auth: Identifiers, admin keys, voter IDs
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
