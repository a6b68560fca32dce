// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the VoteHub API.

# Handler Types

Each handler is a struct over the store and config:

  - PollHandler: list, view and manage polls of one kind
  - VotingHandler: casting a vote and reading back your own
  - ResultsHandler: tallies as JSON, CSV and a live event stream
  - AdminHandler: dashboard counters and system settings

Poll, voting and results handlers are built once per kind, so polls and
elections share one implementation:

	polls := handlers.NewPollHandler(st, cfg, models.KindPoll)
	elections := handlers.NewPollHandler(st, cfg, models.KindElection)

An id of the wrong kind is reported as not found.

# Identity

Admin operations require X-Admin-ID and X-Admin-Key (an HMAC of the id).
Voting requires X-Voter-ID, a UUID issued by the session layer. Both fail
with 401.

# Voting

	POST /polls/{id}/votes   {"option_id": "..."}

A second vote by the same voter gets 409 and changes nothing. Votes on a
paused poll, or one past its end time, also get 409.

# Live Results

GET /polls/{id}/results/stream is a server-sent event stream. It sends
a "tally" event immediately and again after every change to the poll,
and an "error" event if a refresh fails. At the poll's end time it sends
a final "tally" and an "ended" event, then closes. If the poll is
deleted it sends an "error" event and closes. The stream's subscription
is released however the stream ends.
*/
package handlers
