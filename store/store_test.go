// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/realtime"
	"github.com/danielhkuo/votehub/testutil"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupStore(t *testing.T) (*Store, *sql.DB, *realtime.Hub, *testClock) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	hub := realtime.NewHub()
	t.Cleanup(hub.Close)

	clock := &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New(conn, hub, WithClock(clock.now)), conn, hub, clock
}

func draftFor(kind string, endsAt time.Time, options ...string) models.PollDraft {
	d := models.PollDraft{
		Kind:     kind,
		Title:    "Lunch",
		Category: "Food",
		EndsAt:   &endsAt,
	}
	for _, o := range options {
		d.Options = append(d.Options, models.OptionDraft{Text: o})
	}
	return d.Normalize()
}

func TestCreatePoll(t *testing.T) {
	st, _, hub, clock := setupStore(t)
	ctx := context.Background()
	sub := hub.Subscribe()
	defer sub.Close()

	created, err := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "Pizza", "Tacos", "Sushi"), "admin-1")
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	if created.Status != models.StatusActive {
		t.Errorf("Expected status active, got %s", created.Status)
	}
	if len(created.Options) != 3 {
		t.Fatalf("Expected 3 options, got %d", len(created.Options))
	}

	got, err := st.GetPollWithOptions(ctx, models.KindPoll, created.ID)
	if err != nil {
		t.Fatalf("GetPollWithOptions failed: %v", err)
	}
	if got.Title != "Lunch" || got.CreatedBy != "admin-1" {
		t.Errorf("Unexpected poll: %+v", got.Poll)
	}
	if got.EndsAt == nil || !got.EndsAt.Equal(clock.t.Add(time.Hour)) {
		t.Errorf("Expected ends_at %v, got %v", clock.t.Add(time.Hour), got.EndsAt)
	}
	for i, want := range []string{"Pizza", "Tacos", "Sushi"} {
		if got.Options[i].Text != want {
			t.Errorf("Option %d: expected %q, got %q", i, want, got.Options[i].Text)
		}
		if got.Options[i].Votes != 0 {
			t.Errorf("Option %d: expected 0 votes, got %d", i, got.Options[i].Votes)
		}
	}

	// One poll insert plus one insert per option
	for i := 0; i < 4; i++ {
		select {
		case c := <-sub.C():
			if c.PollID != created.ID {
				t.Errorf("Change %d has poll %q, want %q", i, c.PollID, created.ID)
			}
		default:
			t.Fatalf("Expected 4 changes, got %d", i)
		}
	}
}

func TestGetPollWrongKind(t *testing.T) {
	st, _, _, clock := setupStore(t)
	ctx := context.Background()

	created, err := st.CreatePoll(ctx, draftFor(models.KindElection, clock.t.Add(time.Hour), "Ada"), "admin")
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	if _, err := st.GetPoll(ctx, models.KindPoll, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for wrong kind, got %v", err)
	}
	if _, err := st.GetPoll(ctx, models.KindElection, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing poll, got %v", err)
	}
}

func TestListPolls(t *testing.T) {
	st, _, _, clock := setupStore(t)
	ctx := context.Background()

	shortLived, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Minute), "A", "B"), "admin")
	clock.advance(time.Second)
	paused, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	clock.advance(time.Second)
	active, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B", "C"), "admin")
	clock.advance(time.Second)
	if _, err := st.CreatePoll(ctx, draftFor(models.KindElection, clock.t.Add(time.Hour), "Ada"), "admin"); err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	if _, err := st.ToggleStatus(ctx, models.KindPoll, paused.ID); err != nil {
		t.Fatalf("ToggleStatus failed: %v", err)
	}
	// shortLived passes its end time without any status write
	clock.advance(2 * time.Minute)

	tests := []struct {
		name   string
		kind   string
		status string
		want   []string
	}{
		{"all polls newest first", models.KindPoll, "", []string{active.ID, paused.ID, shortLived.ID}},
		{"active", models.KindPoll, models.StatusActive, []string{active.ID}},
		{"paused", models.KindPoll, models.StatusPaused, []string{paused.ID}},
		{"ended by time", models.KindPoll, models.StatusEnded, []string{shortLived.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.ListPolls(ctx, tt.kind, tt.status)
			if err != nil {
				t.Fatalf("ListPolls failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d polls, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}

	all, err := st.ListPolls(ctx, "", "")
	if err != nil {
		t.Fatalf("ListPolls failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 polls across kinds, got %d", len(all))
	}

	polls, _ := st.ListPolls(ctx, models.KindPoll, models.StatusActive)
	if polls[0].OptionCount != 3 {
		t.Errorf("Expected option count 3, got %d", polls[0].OptionCount)
	}
}

func TestListOptionsUnknownPoll(t *testing.T) {
	st, _, _, _ := setupStore(t)

	options, err := st.ListOptions(context.Background(), "no-such-poll")
	if err != nil {
		t.Fatalf("ListOptions failed: %v", err)
	}
	if options == nil || len(options) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", options)
	}
}

func TestListOptionsNullVotes(t *testing.T) {
	st, conn, _, _ := setupStore(t)

	pollID := testutil.CreateTestPoll(t, conn, models.KindPoll, models.StatusActive, nil)
	optionID := testutil.AddTestOption(t, conn, pollID, "A", 0)
	if _, err := conn.Exec(`UPDATE option SET votes = NULL WHERE id = $1`, optionID); err != nil {
		t.Fatalf("Failed to null votes: %v", err)
	}

	options, err := st.ListOptions(context.Background(), pollID)
	if err != nil {
		t.Fatalf("ListOptions failed: %v", err)
	}
	if len(options) != 1 || options[0].Votes != 0 {
		t.Errorf("Expected one option with 0 votes, got %+v", options)
	}
}

func TestSubmitVote(t *testing.T) {
	st, conn, _, clock := setupStore(t)
	ctx := context.Background()

	poll, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	other, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "X", "Y"), "admin")
	optA := poll.Options[0].ID

	vote, err := st.SubmitVote(ctx, VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: optA, VoterID: "voter-1"})
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}
	if vote.ID == "" || !vote.CreatedAt.Equal(clock.t) {
		t.Errorf("Unexpected vote: %+v", vote)
	}

	tests := []struct {
		name    string
		sub     VoteSubmission
		wantErr error
	}{
		{
			name:    "duplicate voter",
			sub:     VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: poll.Options[1].ID, VoterID: "voter-1"},
			wantErr: ErrDuplicateVote,
		},
		{
			name:    "option from another poll",
			sub:     VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: other.Options[0].ID, VoterID: "voter-2"},
			wantErr: ErrInvalidOption,
		},
		{
			name:    "unknown option",
			sub:     VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: "nope", VoterID: "voter-2"},
			wantErr: ErrInvalidOption,
		},
		{
			name:    "unknown poll",
			sub:     VoteSubmission{Kind: models.KindPoll, PollID: "nope", OptionID: optA, VoterID: "voter-2"},
			wantErr: ErrNotFound,
		},
		{
			name:    "wrong kind",
			sub:     VoteSubmission{Kind: models.KindElection, PollID: poll.ID, OptionID: optA, VoterID: "voter-2"},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.SubmitVote(ctx, tt.sub)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// Rejections changed nothing
	if got := testutil.GetOptionVotes(t, conn, optA); got != 1 {
		t.Errorf("Expected 1 vote for A, got %d", got)
	}
	if got := testutil.GetOptionVotes(t, conn, poll.Options[1].ID); got != 0 {
		t.Errorf("Expected 0 votes for B, got %d", got)
	}
	if got := testutil.CountVotes(t, conn, poll.ID); got != 1 {
		t.Errorf("Expected 1 vote row, got %d", got)
	}

	// The same voter may vote in a different poll
	if _, err := st.SubmitVote(ctx, VoteSubmission{Kind: models.KindPoll, PollID: other.ID, OptionID: other.Options[0].ID, VoterID: "voter-1"}); err != nil {
		t.Errorf("Vote in second poll failed: %v", err)
	}
}

func TestSubmitVoteClosedPolls(t *testing.T) {
	st, _, _, clock := setupStore(t)
	ctx := context.Background()

	poll, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	vote := func(voter string) error {
		_, err := st.SubmitVote(ctx, VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: voter})
		return err
	}

	if _, err := st.ToggleStatus(ctx, models.KindPoll, poll.ID); err != nil {
		t.Fatalf("ToggleStatus failed: %v", err)
	}
	if err := vote("paused-voter"); !errors.Is(err, ErrPollNotActive) {
		t.Errorf("Expected ErrPollNotActive while paused, got %v", err)
	}

	if _, err := st.ToggleStatus(ctx, models.KindPoll, poll.ID); err != nil {
		t.Fatalf("ToggleStatus failed: %v", err)
	}
	if err := vote("resumed-voter"); err != nil {
		t.Errorf("Vote after resume failed: %v", err)
	}

	clock.advance(time.Hour)
	if err := vote("late-voter"); !errors.Is(err, ErrPollNotActive) {
		t.Errorf("Expected ErrPollNotActive at end time, got %v", err)
	}
}

func TestSubmitVotePublishes(t *testing.T) {
	st, _, hub, clock := setupStore(t)
	ctx := context.Background()

	poll, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	sub := hub.Subscribe("vote")
	defer sub.Close()

	vote, err := st.SubmitVote(ctx, VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: "v"})
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	select {
	case c := <-sub.C():
		want := realtime.Change{Table: "vote", Op: realtime.OpInsert, PollID: poll.ID, RowID: vote.ID}
		if c != want {
			t.Errorf("Expected %+v, got %+v", want, c)
		}
	default:
		t.Fatal("Expected a vote change")
	}

	// A rejected vote publishes nothing
	st.SubmitVote(ctx, VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: "v"})
	select {
	case c := <-sub.C():
		t.Errorf("Unexpected change after rejected vote: %+v", c)
	default:
	}
}

func TestGetVote(t *testing.T) {
	st, _, _, clock := setupStore(t)
	ctx := context.Background()

	poll, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	if _, err := st.GetVote(ctx, poll.ID, "v"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound before voting, got %v", err)
	}

	st.SubmitVote(ctx, VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: poll.Options[1].ID, VoterID: "v"})
	vote, err := st.GetVote(ctx, poll.ID, "v")
	if err != nil {
		t.Fatalf("GetVote failed: %v", err)
	}
	if vote.OptionID != poll.Options[1].ID {
		t.Errorf("Expected option %s, got %s", poll.Options[1].ID, vote.OptionID)
	}
}

func TestStatusTransitions(t *testing.T) {
	st, _, _, clock := setupStore(t)
	ctx := context.Background()

	poll, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")

	status, err := st.ToggleStatus(ctx, models.KindPoll, poll.ID)
	if err != nil || status != models.StatusPaused {
		t.Fatalf("Expected paused, got %q (%v)", status, err)
	}
	status, err = st.ToggleStatus(ctx, models.KindPoll, poll.ID)
	if err != nil || status != models.StatusActive {
		t.Fatalf("Expected active, got %q (%v)", status, err)
	}

	if err := st.EndPoll(ctx, models.KindPoll, poll.ID); err != nil {
		t.Fatalf("EndPoll failed: %v", err)
	}
	if err := st.EndPoll(ctx, models.KindPoll, poll.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition ending twice, got %v", err)
	}
	if _, err := st.ToggleStatus(ctx, models.KindPoll, poll.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition toggling ended poll, got %v", err)
	}
	if _, err := st.ToggleStatus(ctx, models.KindPoll, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Expired by time counts as ended for toggling
	expiring, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Minute), "A", "B"), "admin")
	clock.advance(time.Minute)
	if _, err := st.ToggleStatus(ctx, models.KindPoll, expiring.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition toggling expired poll, got %v", err)
	}
}

func TestUpdatePoll(t *testing.T) {
	st, _, _, clock := setupStore(t)
	ctx := context.Background()

	created, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	poll := created.Poll
	poll.Title = "Dinner"

	if err := st.UpdatePoll(ctx, poll); err != nil {
		t.Fatalf("UpdatePoll failed: %v", err)
	}
	got, _ := st.GetPoll(ctx, models.KindPoll, poll.ID)
	if got.Title != "Dinner" {
		t.Errorf("Expected title Dinner, got %q", got.Title)
	}

	poll.ID = "missing"
	if err := st.UpdatePoll(ctx, poll); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeletePoll(t *testing.T) {
	st, conn, _, clock := setupStore(t)
	ctx := context.Background()

	poll, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	st.SubmitVote(ctx, VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: "v"})

	if err := st.DeletePoll(ctx, models.KindElection, poll.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting with wrong kind, got %v", err)
	}
	if err := st.DeletePoll(ctx, models.KindPoll, poll.ID); err != nil {
		t.Fatalf("DeletePoll failed: %v", err)
	}
	if _, err := st.GetPoll(ctx, models.KindPoll, poll.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected poll gone, got %v", err)
	}
	if got := testutil.CountVotes(t, conn, poll.ID); got != 0 {
		t.Errorf("Expected votes removed, got %d", got)
	}
	options, _ := st.ListOptions(ctx, poll.ID)
	if len(options) != 0 {
		t.Errorf("Expected options removed, got %d", len(options))
	}
}

func TestAddOption(t *testing.T) {
	st, _, _, clock := setupStore(t)
	ctx := context.Background()

	poll, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")

	opt, err := st.AddOption(ctx, models.KindPoll, poll.ID, models.OptionDraft{Text: "C"})
	if err != nil {
		t.Fatalf("AddOption failed: %v", err)
	}
	options, _ := st.ListOptions(ctx, poll.ID)
	if len(options) != 3 || options[2].ID != opt.ID {
		t.Errorf("Expected new option last, got %+v", options)
	}

	var verr *models.ValidationError
	if _, err := st.AddOption(ctx, models.KindPoll, poll.ID, models.OptionDraft{Text: "a"}); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for duplicate label, got %v", err)
	}
	if _, err := st.AddOption(ctx, models.KindPoll, "missing", models.OptionDraft{Text: "D"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	st.EndPoll(ctx, models.KindPoll, poll.ID)
	if _, err := st.AddOption(ctx, models.KindPoll, poll.ID, models.OptionDraft{Text: "D"}); !errors.Is(err, ErrPollNotActive) {
		t.Errorf("Expected ErrPollNotActive on ended poll, got %v", err)
	}
}

func TestStats(t *testing.T) {
	st, _, _, clock := setupStore(t)
	ctx := context.Background()

	poll, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	ended, _ := st.CreatePoll(ctx, draftFor(models.KindPoll, clock.t.Add(time.Hour), "A", "B"), "admin")
	election, _ := st.CreatePoll(ctx, draftFor(models.KindElection, clock.t.Add(time.Hour), "Ada", "Grace"), "admin")
	st.EndPoll(ctx, models.KindPoll, ended.ID)

	for _, voter := range []string{"v1", "v2"} {
		st.SubmitVote(ctx, VoteSubmission{Kind: models.KindPoll, PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: voter})
	}
	st.SubmitVote(ctx, VoteSubmission{Kind: models.KindElection, PollID: election.ID, OptionID: election.Options[1].ID, VoterID: "v1"})

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	want := models.StatsResponse{
		TotalPolls:      2,
		ActivePolls:     1,
		TotalElections:  1,
		ActiveElections: 1,
		TotalVotes:      3,
		TotalVotesLabel: "3 votes",
	}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}
}

func TestSettings(t *testing.T) {
	st, _, hub, _ := setupStore(t)
	ctx := context.Background()

	settings, err := st.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("Expected defaults before any save")
	}

	sub := hub.Subscribe("setting")
	defer sub.Close()

	saved, err := st.SaveSettingsSection(ctx, models.SectionGeneral, []byte(`{"max_poll_duration_days": 7}`), "admin")
	if err != nil {
		t.Fatalf("SaveSettingsSection failed: %v", err)
	}
	if saved.General.MaxPollDurationDays != 7 {
		t.Errorf("Expected 7 days, got %d", saved.General.MaxPollDurationDays)
	}
	if saved.General.PlatformName != models.DefaultSettings().General.PlatformName {
		t.Errorf("Expected unspecified fields to keep their value, got %q", saved.General.PlatformName)
	}

	select {
	case c := <-sub.C():
		if c.RowID != models.SectionGeneral {
			t.Errorf("Expected change for general, got %+v", c)
		}
	default:
		t.Error("Expected a setting change")
	}

	reloaded, _ := st.Settings(ctx)
	if reloaded.MaxPollDuration() != 7*24*time.Hour {
		t.Errorf("Expected 7 day max duration after reload, got %v", reloaded.MaxPollDuration())
	}

	// Saving again overwrites the same row
	if _, err := st.SaveSettingsSection(ctx, models.SectionGeneral, []byte(`{"max_poll_duration_days": 14}`), "admin"); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	reloaded, _ = st.Settings(ctx)
	if reloaded.General.MaxPollDurationDays != 14 {
		t.Errorf("Expected 14 days, got %d", reloaded.General.MaxPollDurationDays)
	}

	tests := []struct {
		name     string
		section  string
		payload  string
		notFound bool
	}{
		{"unknown section", "billing", `{}`, true},
		{"unknown field", models.SectionGeneral, `{"colour": "blue"}`, false},
		{"malformed json", models.SectionGeneral, `{`, false},
		{"out of range", models.SectionGeneral, `{"max_poll_duration_days": 0}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.SaveSettingsSection(ctx, tt.section, []byte(tt.payload), "admin")
			if tt.notFound {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound, got %v", err)
				}
				return
			}
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}
