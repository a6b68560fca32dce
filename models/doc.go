// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types, request and response types, and the
pure rules shared by the store and the handlers.

# Domain Types

  - Poll: one poll or election with its lifecycle state
  - Option: a choice, or a candidate with a party, and its vote count
  - Vote: one voter's pick in one poll
  - Tally, OptionResult: ranked results with percentages
  - PollSummary: list view with effective status and time left

# Lifecycle

A poll is ended when its status is ended or its end time has passed.
IsEnded, EffectiveStatus and AcceptsVotes all take the current time so
callers agree on a single clock reading.

# Forms

PollDraft and OptionDraft hold what a creator submits. Normalize trims
input and drops blank options; Validate returns a *ValidationError naming
the offending field. ApplyUpdate does the same for partial edits.

# Settings

Settings groups admin configuration into four sections: general,
security, notifications and performance. DefaultSettings supplies every
value; stored sections overlay it.
*/
package models
