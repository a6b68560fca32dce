// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/danielhkuo/votehub/auth"
	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/realtime"
)

// CreatePoll inserts a validated draft and its options in one transaction
func (s *Store) CreatePoll(ctx context.Context, draft models.PollDraft, adminID string) (models.PollWithOptions, error) {
	now := s.Now()
	poll := models.Poll{
		ID:          auth.NewID(),
		Kind:        draft.Kind,
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Status:      models.StatusActive,
		EndsAt:      draft.EndsAt,
		CreatedAt:   now,
		CreatedBy:   adminID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, kind, title, description, category, status, ends_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, poll.ID, poll.Kind, poll.Title, poll.Description, poll.Category, poll.Status, poll.EndsAt, poll.CreatedAt, poll.CreatedBy)
	if err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to insert poll: %w", err)
	}

	options := make([]models.Option, 0, len(draft.Options))
	changes := []realtime.Change{{Table: "poll", Op: realtime.OpInsert, PollID: poll.ID, RowID: poll.ID}}
	for i, o := range draft.Options {
		opt, err := insertOption(ctx, tx, poll.ID, i, o)
		if err != nil {
			return models.PollWithOptions{}, err
		}
		options = append(options, opt)
		changes = append(changes, realtime.Change{Table: "option", Op: realtime.OpInsert, PollID: poll.ID, RowID: opt.ID})
	}

	if err := tx.Commit(); err != nil {
		return models.PollWithOptions{}, fmt.Errorf("failed to commit poll: %w", err)
	}

	s.publish(ctx, changes...)
	return models.PollWithOptions{Poll: poll, Options: options}, nil
}

func insertOption(ctx context.Context, tx *sql.Tx, pollID string, position int, o models.OptionDraft) (models.Option, error) {
	opt := models.Option{
		ID:          auth.NewID(),
		PollID:      pollID,
		Text:        o.Text,
		Party:       o.Party,
		Description: o.Description,
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO option (id, poll_id, position, label, party, description, votes)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
	`, opt.ID, opt.PollID, position, opt.Text, opt.Party, opt.Description)
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to insert option: %w", err)
	}
	return opt, nil
}

// GetPoll loads one poll of the given kind
func (s *Store) GetPoll(ctx context.Context, kind, id string) (models.Poll, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pollColumns+`
		FROM poll p
		WHERE p.id = $1 AND p.kind = $2
	`, id, kind)

	poll, err := scanPoll(row)
	if err == sql.ErrNoRows {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	return poll, nil
}

// GetPollWithOptions loads a poll and its options in display order
func (s *Store) GetPollWithOptions(ctx context.Context, kind, id string) (models.PollWithOptions, error) {
	poll, err := s.GetPoll(ctx, kind, id)
	if err != nil {
		return models.PollWithOptions{}, err
	}
	options, err := s.ListOptions(ctx, id)
	if err != nil {
		return models.PollWithOptions{}, err
	}
	return models.PollWithOptions{Poll: poll, Options: options}, nil
}

// ListPolls returns polls of kind (all kinds when empty), newest first.
// statusFilter matches the effective status, so a poll past its end time
// is listed as ended.
func (s *Store) ListPolls(ctx context.Context, kind, statusFilter string) ([]models.PollSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pollColumns+`,
		       CAST(COALESCE(SUM(o.votes), 0) AS BIGINT), COUNT(o.id)
		FROM poll p
		LEFT JOIN option o ON o.poll_id = p.id
		WHERE ($1 = '' OR p.kind = $1)
		GROUP BY `+pollColumns+`
		ORDER BY p.created_at DESC, p.id
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	now := s.Now()
	summaries := []models.PollSummary{}
	for rows.Next() {
		var total int64
		var optionCount int
		poll, err := scanPoll(rows, &total, &optionCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		summary := models.Summarize(poll, total, optionCount, now)
		if statusFilter != "" && summary.EffectiveStatus != statusFilter {
			continue
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read polls: %w", err)
	}
	return summaries, nil
}

// ListOptions returns a poll's options in the order they were entered.
// An unknown poll has no options.
func (s *Store) ListOptions(ctx context.Context, pollID string) ([]models.Option, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, label, party, description, COALESCE(votes, 0)
		FROM option
		WHERE poll_id = $1
		ORDER BY position, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Party, &opt.Description, &opt.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}
	return options, nil
}

// UpdatePoll saves the editable fields of p
func (s *Store) UpdatePoll(ctx context.Context, p models.Poll) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll
		SET title = $1, description = $2, category = $3, ends_at = $4
		WHERE id = $5 AND kind = $6
	`, p.Title, p.Description, p.Category, p.EndsAt, p.ID, p.Kind)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	s.publish(ctx, realtime.Change{Table: "poll", Op: realtime.OpUpdate, PollID: p.ID, RowID: p.ID})
	return nil
}

// DeletePoll removes a poll with its options and votes
func (s *Store) DeletePoll(ctx context.Context, kind, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1 AND kind = $2)
	`, id, kind).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	for _, query := range []string{
		`DELETE FROM vote WHERE poll_id = $1`,
		`DELETE FROM option WHERE poll_id = $1`,
		`DELETE FROM poll WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete poll: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	s.publish(ctx, realtime.Change{Table: "poll", Op: realtime.OpDelete, PollID: id, RowID: id})
	return nil
}

// AddOption appends an option or candidate to a poll that has not ended
func (s *Store) AddOption(ctx context.Context, kind, pollID string, draft models.OptionDraft) (models.Option, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	poll, err := scanPoll(tx.QueryRowContext(ctx, `
		SELECT `+pollColumns+` FROM poll p WHERE p.id = $1 AND p.kind = $2
	`, pollID, kind))
	if err == sql.ErrNoRows {
		return models.Option{}, ErrNotFound
	}
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to query poll: %w", err)
	}
	if models.IsEnded(poll, s.Now()) {
		return models.Option{}, ErrPollNotActive
	}

	var position int
	var duplicate bool
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), -1) + 1,
		       COALESCE(SUM(CASE WHEN LOWER(label) = LOWER($2) THEN 1 ELSE 0 END), 0) > 0
		FROM option
		WHERE poll_id = $1
	`, pollID, draft.Text).Scan(&position, &duplicate)
	if err != nil {
		return models.Option{}, fmt.Errorf("failed to query options: %w", err)
	}
	if duplicate {
		return models.Option{}, &models.ValidationError{Field: "text", Message: fmt.Sprintf("%q already exists in this poll", strings.TrimSpace(draft.Text))}
	}

	opt, err := insertOption(ctx, tx, pollID, position, draft)
	if err != nil {
		return models.Option{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Option{}, fmt.Errorf("failed to commit option: %w", err)
	}

	s.publish(ctx, realtime.Change{Table: "option", Op: realtime.OpInsert, PollID: pollID, RowID: opt.ID})
	return opt, nil
}

// ToggleStatus flips an active poll to paused and a paused poll to active.
// Ended polls cannot be toggled.
func (s *Store) ToggleStatus(ctx context.Context, kind, id string) (string, error) {
	poll, err := s.GetPoll(ctx, kind, id)
	if err != nil {
		return "", err
	}

	var next string
	switch models.EffectiveStatus(poll, s.Now()) {
	case models.StatusActive:
		next = models.StatusPaused
	case models.StatusPaused:
		next = models.StatusActive
	default:
		return "", ErrInvalidTransition
	}

	if err := s.setStatus(ctx, poll, next); err != nil {
		return "", err
	}
	return next, nil
}

// EndPoll closes a poll to voting before its end time
func (s *Store) EndPoll(ctx context.Context, kind, id string) error {
	poll, err := s.GetPoll(ctx, kind, id)
	if err != nil {
		return err
	}
	if poll.Status == models.StatusEnded {
		return ErrInvalidTransition
	}
	return s.setStatus(ctx, poll, models.StatusEnded)
}

// setStatus only applies when the stored status is still what was read,
// so two concurrent toggles cannot both succeed.
func (s *Store) setStatus(ctx context.Context, poll models.Poll, next string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll SET status = $1 WHERE id = $2 AND status = $3
	`, next, poll.ID, poll.Status)
	if err != nil {
		return fmt.Errorf("failed to update poll status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidTransition
	}

	s.publish(ctx, realtime.Change{Table: "poll", Op: realtime.OpUpdate, PollID: poll.ID, RowID: poll.ID})
	return nil
}
