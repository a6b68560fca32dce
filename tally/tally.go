// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/realtime"
)

// Tables whose changes can move a poll's results
var Tables = []string{"poll", "option", "vote"}

// ErrPollDeleted is returned by Follow when the followed poll is deleted.
var ErrPollDeleted = errors.New("tally: poll deleted")

// Compute totals the options' votes, derives each option's share and ranks
// them by votes, highest first. Equal counts keep their input order.
func Compute(pollID string, options []models.Option, now time.Time) models.Tally {
	var total int64
	for _, o := range options {
		total += o.Votes
	}

	results := make([]models.OptionResult, len(options))
	for i, o := range options {
		results[i] = models.OptionResult{
			OptionID:   o.ID,
			Text:       o.Text,
			Party:      o.Party,
			Votes:      o.Votes,
			Percentage: percentage(o.Votes, total),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Votes > results[j].Votes
	})
	for i := range results {
		results[i].Rank = i + 1 // 1-indexed
	}

	return models.Tally{
		PollID:     pollID,
		TotalVotes: total,
		Results:    results,
		ComputedAt: now,
	}
}

func percentage(votes, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(votes) / float64(total) * 100
}

// OptionLister fetches a poll's options with current counts.
// *store.Store satisfies it.
type OptionLister interface {
	ListOptions(ctx context.Context, pollID string) ([]models.Option, error)
}

// Aggregator recomputes tallies from the backend on demand.
type Aggregator struct {
	options OptionLister
	now     func() time.Time
}

func NewAggregator(options OptionLister) *Aggregator {
	return &Aggregator{options: options, now: time.Now}
}

// Tally fetches the poll's options and computes fresh results
func (a *Aggregator) Tally(ctx context.Context, pollID string) (models.Tally, error) {
	options, err := a.options.ListOptions(ctx, pollID)
	if err != nil {
		return models.Tally{}, fmt.Errorf("failed to fetch options for %s: %w", pollID, err)
	}
	return Compute(pollID, options, a.now().UTC()), nil
}

// Follow emits the poll's tally once, then again after every change that
// touches it, until ctx is done, src closes or the poll is deleted. Fetch
// failures are passed to emit and do not stop the loop. The subscription is
// released on return.
func (a *Aggregator) Follow(ctx context.Context, src realtime.Source, pollID string, emit func(models.Tally, error)) error {
	sub := src.Subscribe(Tables...)
	defer sub.Close()

	emit(a.Tally(ctx, pollID))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-sub.C():
			if !ok {
				return realtime.ErrClosed
			}
			if !affects(c, pollID) {
				continue
			}
			if c.Table == "poll" && c.Op == realtime.OpDelete {
				return ErrPollDeleted
			}
			emit(a.Tally(ctx, pollID))
		}
	}
}

func affects(c realtime.Change, pollID string) bool {
	return c.Op == realtime.OpResync || c.PollID == pollID
}
