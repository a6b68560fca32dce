// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/votehub/auth"
	"github.com/danielhkuo/votehub/db"
	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/realtime"
)

// VoteSubmission is one voter's choice on one poll
type VoteSubmission struct {
	Kind     string
	PollID   string
	OptionID string
	VoterID  string
	IPHash   *string
}

// SubmitVote records a vote and increments its option's count atomically.
// The store's UNIQUE (poll_id, voter_id) constraint is the only duplicate
// check: a second vote fails with ErrDuplicateVote and changes nothing.
func (s *Store) SubmitVote(ctx context.Context, sub VoteSubmission) (models.Vote, error) {
	now := s.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	poll, err := scanPoll(tx.QueryRowContext(ctx, `
		SELECT `+pollColumns+` FROM poll p WHERE p.id = $1 AND p.kind = $2
	`, sub.PollID, sub.Kind))
	if err == sql.ErrNoRows {
		return models.Vote{}, ErrNotFound
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query poll: %w", err)
	}
	if !models.AcceptsVotes(poll, now) {
		return models.Vote{}, ErrPollNotActive
	}

	var optionPollID string
	err = tx.QueryRowContext(ctx, `
		SELECT poll_id FROM option WHERE id = $1
	`, sub.OptionID).Scan(&optionPollID)
	if err == sql.ErrNoRows || (err == nil && optionPollID != sub.PollID) {
		return models.Vote{}, ErrInvalidOption
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query option: %w", err)
	}

	vote := models.Vote{
		ID:        auth.NewID(),
		PollID:    sub.PollID,
		OptionID:  sub.OptionID,
		VoterID:   sub.VoterID,
		CreatedAt: now,
		IPHash:    sub.IPHash,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, poll_id, option_id, voter_id, created_at, ip_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, vote.ID, vote.PollID, vote.OptionID, vote.VoterID, vote.CreatedAt, vote.IPHash)
	if db.IsUniqueViolation(err) {
		return models.Vote{}, ErrDuplicateVote
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE option SET votes = COALESCE(votes, 0) + 1 WHERE id = $1
	`, vote.OptionID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to increment vote count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Vote{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	s.publish(ctx,
		realtime.Change{Table: "vote", Op: realtime.OpInsert, PollID: vote.PollID, RowID: vote.ID},
		realtime.Change{Table: "option", Op: realtime.OpUpdate, PollID: vote.PollID, RowID: vote.OptionID},
	)
	return vote, nil
}

// GetVote returns the voter's vote on a poll, or ErrNotFound
func (s *Store) GetVote(ctx context.Context, pollID, voterID string) (models.Vote, error) {
	var vote models.Vote
	err := s.db.QueryRowContext(ctx, `
		SELECT id, poll_id, option_id, voter_id, created_at, ip_hash
		FROM vote
		WHERE poll_id = $1 AND voter_id = $2
	`, pollID, voterID).Scan(&vote.ID, &vote.PollID, &vote.OptionID, &vote.VoterID, &vote.CreatedAt, &vote.IPHash)
	if err == sql.ErrNoRows {
		return models.Vote{}, ErrNotFound
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query vote: %w", err)
	}
	return vote, nil
}

// Stats counts polls and elections by effective status and sums all votes
func (s *Store) Stats(ctx context.Context) (models.StatsResponse, error) {
	summaries, err := s.ListPolls(ctx, "", "")
	if err != nil {
		return models.StatsResponse{}, err
	}

	var stats models.StatsResponse
	for _, p := range summaries {
		active := p.EffectiveStatus == models.StatusActive
		switch p.Kind {
		case models.KindElection:
			stats.TotalElections++
			if active {
				stats.ActiveElections++
			}
		default:
			stats.TotalPolls++
			if active {
				stats.ActivePolls++
			}
		}
		stats.TotalVotes += p.TotalVotes
	}
	stats.TotalVotesLabel = models.VotesLabel(stats.TotalVotes)
	return stats, nil
}
