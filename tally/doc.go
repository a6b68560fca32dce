// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes poll results and keeps them current.

# Results

Compute is a pure function over a poll's options:

	percentage = votes / total * 100   (0 when total is 0)

Options are ranked by votes, highest first, with a stable sort so equal
counts keep the order the backend returned (entry order). Ranks are
1-indexed and unique; ties are not given shared ranks.

# Live Updates

Follow subscribes to the poll, option and vote tables and recomputes from
a full refetch on every change for the poll, or on a resync:

	agg := tally.NewAggregator(st)
	err := agg.Follow(ctx, hub, pollID, func(t models.Tally, err error) {
		if err != nil {
			// show "could not load results"
			return
		}
		render(t)
	})

Each viewer runs its own Follow; nothing is shared between them.
*/
package tally
