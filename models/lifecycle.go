// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/dustin/go-humanize"
)

// IsEnded reports whether a poll no longer accepts votes at now.
// A poll past its end time is ended whatever its stored status says.
func IsEnded(p Poll, now time.Time) bool {
	if p.Status == StatusEnded {
		return true
	}
	return p.EndsAt != nil && !now.Before(*p.EndsAt)
}

// EffectiveStatus is the status a poll should be shown and enforced with.
func EffectiveStatus(p Poll, now time.Time) string {
	if IsEnded(p, now) {
		return StatusEnded
	}
	return p.Status
}

// AcceptsVotes reports whether votes may be cast on the poll at now.
func AcceptsVotes(p Poll, now time.Time) bool {
	return EffectiveStatus(p, now) == StatusActive
}

// TimeLeft renders a short label such as "3 days from now" or
// "ended 2 days ago".
func TimeLeft(p Poll, now time.Time) string {
	if p.EndsAt == nil {
		if IsEnded(p, now) {
			return "ended"
		}
		return "no end date"
	}
	label := humanize.RelTime(*p.EndsAt, now, "ago", "from now")
	if IsEnded(p, now) {
		if !now.Before(*p.EndsAt) {
			return "ended " + label
		}
		return "ended"
	}
	return label
}

// Summarize builds a list row for the poll.
func Summarize(p Poll, totalVotes int64, optionCount int, now time.Time) PollSummary {
	return PollSummary{
		Poll:            p,
		EffectiveStatus: EffectiveStatus(p, now),
		TotalVotes:      totalVotes,
		OptionCount:     optionCount,
		TimeLeft:        TimeLeft(p, now),
	}
}

// VotesLabel formats a vote count for display, e.g. "1,247 votes".
func VotesLabel(n int64) string {
	if n == 1 {
		return "1 vote"
	}
	return humanize.Comma(n) + " votes"
}
