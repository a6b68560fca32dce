// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants
const (
	StatusActive = "active"
	StatusPaused = "paused"
	StatusEnded  = "ended"
)

// Poll kinds. An election is a poll whose options are candidates.
const (
	KindPoll     = "poll"
	KindElection = "election"
)

// DefaultParty is assigned to candidates submitted without an affiliation.
const DefaultParty = "Independent"

// Request types

type VoteRequest struct {
	OptionID string `json:"option_id"`
}

type UpdatePollRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// Response types

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type StatusResponse struct {
	PollID string `json:"poll_id"`
	Status string `json:"status"`
}

type VoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type MyVoteResponse struct {
	HasVoted bool       `json:"has_voted"`
	OptionID string     `json:"option_id,omitempty"`
	VotedAt  *time.Time `json:"voted_at,omitempty"`
}

type StatsResponse struct {
	TotalPolls      int    `json:"total_polls"`
	ActivePolls     int    `json:"active_polls"`
	TotalElections  int    `json:"total_elections"`
	ActiveElections int    `json:"active_elections"`
	TotalVotes      int64  `json:"total_votes"`
	TotalVotesLabel string `json:"total_votes_label"`
}

// Domain types

type Poll struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedBy   string     `json:"created_by"`
}

// Option is a selectable choice of a poll. Party and Description are only
// populated for election candidates.
type Option struct {
	ID          string `json:"id"`
	PollID      string `json:"poll_id"`
	Text        string `json:"text"`
	Party       string `json:"party,omitempty"`
	Description string `json:"description,omitempty"`
	Votes       int64  `json:"votes"`
}

// PollWithOptions nests the poll under "poll" in JSON; its fields are
// promoted in Go.
type PollWithOptions struct {
	Poll    `json:"poll"`
	Options []Option `json:"options"`
}

// PollSummary is a list row: the poll with its read-time status and totals.
type PollSummary struct {
	Poll
	EffectiveStatus string `json:"effective_status"`
	TotalVotes      int64  `json:"total_votes"`
	OptionCount     int    `json:"option_count"`
	TimeLeft        string `json:"time_left"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	VoterID   string    `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
	IPHash    *string   `json:"-"` // Never expose in JSON
}

// Tally types

type OptionResult struct {
	OptionID   string  `json:"option_id"`
	Text       string  `json:"text"`
	Party      string  `json:"party,omitempty"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
	Rank       int     `json:"rank"` // 1-indexed ranking
}

// Tally holds a poll's results in rank order.
type Tally struct {
	PollID     string         `json:"poll_id"`
	TotalVotes int64          `json:"total_votes"`
	Results    []OptionResult `json:"results"`
	ComputedAt time.Time      `json:"computed_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
