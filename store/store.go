// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/realtime"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateVote     = errors.New("voter has already voted in this poll")
	ErrPollNotActive     = errors.New("poll is not accepting votes")
	ErrInvalidOption     = errors.New("option does not belong to this poll")
	ErrInvalidTransition = errors.New("status change not allowed")
)

// Store is the backend for polls, options, votes and settings. Every
// committed write is announced to the publisher.
type Store struct {
	db  *sql.DB
	pub realtime.Publisher
	now func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *sql.DB, pub realtime.Publisher, opts ...Option) *Store {
	s := &Store{db: db, pub: pub, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock, truncated for stable round trips
func (s *Store) Now() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// publish announces committed changes. Failures are logged: the write
// already happened and viewers still see it on their next fetch.
func (s *Store) publish(ctx context.Context, changes ...realtime.Change) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, changes...); err != nil {
		slog.Warn("failed to publish changes", "error", err, "count", len(changes))
	}
}

const pollColumns = `p.id, p.kind, p.title, p.description, p.category, p.status, p.ends_at, p.created_at, p.created_by`

type scanner interface {
	Scan(dest ...any) error
}

func scanPoll(row scanner, extra ...any) (models.Poll, error) {
	var p models.Poll
	dest := append([]any{
		&p.ID, &p.Kind, &p.Title, &p.Description, &p.Category,
		&p.Status, &p.EndsAt, &p.CreatedAt, &p.CreatedBy,
	}, extra...)
	err := row.Scan(dest...)
	return p, err
}
