// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string or SQLite file (required)
  - DatabaseType: sqlite (default), postgres or pgx
  - AdminKeySalt: Secret for admin key HMAC (required)
  - VoterIPSalt: Secret for voter IP hashing (default: AdminKeySalt)
  - IssueAdminKey: print a key for this admin ID and exit

# Sources

Values are resolved in order: CLI flag, process environment, dotenv file
(-env, default .env), built-in default. The dotenv file never overrides a
variable already present in the environment, and a missing default .env
is ignored.

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ADMIN_KEY_SALT → -admin-salt
	VOTER_IP_SALT  → -ip-salt

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	// ...
*/
package cliparse
