// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity checks and ID generation.

# Admin Keys

Admin keys use HMAC-SHA256 over the admin's identifier:

	adminKey := auth.GenerateAdminKey(adminID, salt)
	err := auth.ValidateAdminKey(adminID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
keys can be issued from the command line (votehub -issue-admin-key) and
validated without storing them.

# Voter IDs

Voters are identified by an opaque UUID supplied by the session layer:

	voterID, err := auth.NormalizeVoterID(r.Header.Get("X-Voter-ID"))

The canonical form is what the one-vote-per-poll constraint sees.

# Record IDs

	id := auth.NewID() // random UUID

# IP Hashing

For privacy-preserving fraud review:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
