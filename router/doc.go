// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the votehub API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, hub, cfg)

The same routes are mounted under /polls and /elections. A poll is only
reachable under the prefix matching its kind.

# Endpoints

Health:

	GET /health

Browsing (public):

	GET /polls?status=active - List polls with effective status
	GET /polls/{id}          - Poll and options

Management (admin, requires X-Admin-ID and X-Admin-Key):

	POST   /polls              - Create poll with options
	PUT    /polls/{id}         - Edit title, description, category, end time
	DELETE /polls/{id}         - Delete poll, options and votes
	POST   /polls/{id}/options - Add option
	POST   /polls/{id}/toggle  - Pause or resume
	POST   /polls/{id}/end     - End voting

Voting (requires X-Voter-ID):

	POST /polls/{id}/votes   - Cast the voter's single vote
	GET  /polls/{id}/my-vote - Whether and how the voter voted

Results (public):

	GET /polls/{id}/results        - Ranked tally
	GET /polls/{id}/results.csv    - Tally as CSV
	GET /polls/{id}/results/stream - Tally as server-sent events

Dashboard and settings:

	GET /stats                     - Counts across polls and elections
	GET /admin/settings            - All settings sections (admin)
	PUT /admin/settings/{section}  - Update one section (admin)
*/
package router
