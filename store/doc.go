// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the backend of the voting service.

It owns every read and write against the database and announces each
committed write to a realtime.Publisher:

	st := store.New(conn, hub)
	polls, err := st.ListPolls(ctx, models.KindPoll, models.StatusActive)

# Votes

SubmitVote runs in one transaction: it checks the poll accepts votes,
checks the option belongs to the poll, inserts the vote and increments
the option count. A second vote by the same voter fails on the UNIQUE
(poll_id, voter_id) constraint and returns ErrDuplicateVote; nothing is
written.

# Lifecycle

Status is stored as active, paused or ended, but a poll whose end time has
passed is treated as ended everywhere without a status write. ListPolls
filters on that effective status.

# Errors

	ErrNotFound          unknown poll, or wrong kind for the id
	ErrDuplicateVote     voter already voted in this poll
	ErrPollNotActive     paused or ended
	ErrInvalidOption     option is not in this poll
	ErrInvalidTransition toggle or end not allowed from the current status

Validation failures are returned as *models.ValidationError.
*/
package store
