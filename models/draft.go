// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports a missing or malformed field in a submitted form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// OptionDraft is one option (or candidate) row of a poll form.
type OptionDraft struct {
	Text        string `json:"text"`
	Party       string `json:"party,omitempty"`
	Description string `json:"description,omitempty"`
}

// PollDraft is the value submitted by the admin poll and election forms.
// Handlers decode into it, normalize and validate it, and hand the copy
// to the store.
type PollDraft struct {
	Kind        string        `json:"-"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	EndsAt      *time.Time    `json:"ends_at"`
	Options     []OptionDraft `json:"options"`
}

// Normalize trims every field, drops blank option rows and fills in the
// default party for election candidates.
func (d PollDraft) Normalize() PollDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.EndsAt = normalizeTime(d.EndsAt)

	options := make([]OptionDraft, 0, len(d.Options))
	for _, o := range d.Options {
		o = o.Normalize(d.Kind)
		if o.Text == "" {
			continue
		}
		options = append(options, o)
	}
	d.Options = options
	return d
}

// Normalize trims the row and applies per-kind defaults.
func (o OptionDraft) Normalize(kind string) OptionDraft {
	o.Text = strings.TrimSpace(o.Text)
	o.Party = strings.TrimSpace(o.Party)
	o.Description = strings.TrimSpace(o.Description)
	if kind == KindElection {
		if o.Party == "" {
			o.Party = DefaultParty
		}
	} else {
		o.Party = ""
		o.Description = ""
	}
	return o
}

// MinOptions is the number of options a poll of the given kind needs.
func MinOptions(kind string) int {
	if kind == KindElection {
		return 1
	}
	return 2
}

// Validate checks a normalized draft. maxDuration bounds how far in the
// future the end time may be; zero means unbounded.
func (d PollDraft) Validate(now time.Time, maxDuration time.Duration) error {
	if d.Kind != KindPoll && d.Kind != KindElection {
		return invalid("kind", "must be %q or %q", KindPoll, KindElection)
	}
	if d.Title == "" {
		return invalid("title", "is required")
	}
	if len(d.Title) > 200 {
		return invalid("title", "must be at most 200 characters")
	}
	if d.Category == "" {
		return invalid("category", "is required")
	}
	if err := ValidateEndsAt(d.EndsAt, now, maxDuration); err != nil {
		return err
	}
	if min := MinOptions(d.Kind); len(d.Options) < min {
		if d.Kind == KindElection {
			return invalid("options", "must contain at least %d named candidate", min)
		}
		return invalid("options", "must contain at least %d non-blank options", min)
	}
	seen := make(map[string]bool, len(d.Options))
	for _, o := range d.Options {
		key := strings.ToLower(o.Text)
		if seen[key] {
			return invalid("options", "contains duplicate entry %q", o.Text)
		}
		seen[key] = true
	}
	return nil
}

// ValidateEndsAt checks an end time submitted on create or update.
func ValidateEndsAt(endsAt *time.Time, now time.Time, maxDuration time.Duration) error {
	if endsAt == nil {
		return invalid("ends_at", "is required")
	}
	if !endsAt.After(now) {
		return invalid("ends_at", "must be in the future")
	}
	if maxDuration > 0 && endsAt.Sub(now) > maxDuration {
		return invalid("ends_at", "must be within %d days", int(maxDuration.Hours()/24))
	}
	return nil
}

// ApplyUpdate returns p with the non-nil fields of req applied and checked.
func ApplyUpdate(p Poll, req UpdatePollRequest, now time.Time, maxDuration time.Duration) (Poll, error) {
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
		if p.Title == "" {
			return Poll{}, invalid("title", "is required")
		}
		if len(p.Title) > 200 {
			return Poll{}, invalid("title", "must be at most 200 characters")
		}
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
		if p.Category == "" {
			return Poll{}, invalid("category", "is required")
		}
	}
	if req.EndsAt != nil {
		endsAt := normalizeTime(req.EndsAt)
		if err := ValidateEndsAt(endsAt, now, maxDuration); err != nil {
			return Poll{}, err
		}
		p.EndsAt = endsAt
	}
	return p, nil
}

// normalizeTime stores times in UTC at the precision PostgreSQL keeps.
func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC().Truncate(time.Microsecond)
	return &u
}
