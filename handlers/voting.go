// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votehub/auth"
	"github.com/danielhkuo/votehub/cliparse"
	"github.com/danielhkuo/votehub/middleware"
	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/store"
)

type VotingHandler struct {
	store *store.Store
	cfg   cliparse.Config
	kind  string
}

func NewVotingHandler(st *store.Store, cfg cliparse.Config, kind string) *VotingHandler {
	return &VotingHandler{store: st, cfg: cfg, kind: kind}
}

// SubmitVote handles POST /polls/{id}/votes
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireVoter(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	// Hash IP for privacy
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.VoterIPSalt)

	pollID := r.PathValue("id")
	vote, err := h.store.SubmitVote(r.Context(), store.VoteSubmission{
		Kind:     h.kind,
		PollID:   pollID,
		OptionID: req.OptionID,
		VoterID:  voterID,
		IPHash:   &ipHash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateVote) {
			slog.Info("duplicate vote rejected", "kind", h.kind, "poll_id", pollID)
		}
		writeStoreError(w, err, h.kind, "submit vote")
		return
	}

	slog.Info("vote recorded", "kind", h.kind, "poll_id", pollID, "vote_id", vote.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{
		VoteID:  vote.ID,
		Message: "Vote recorded",
	})
}

// GetMyVote handles GET /polls/{id}/my-vote
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireVoter(w, r)
	if !ok {
		return
	}

	poll, err := h.store.GetPoll(r.Context(), h.kind, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, h.kind, "get poll")
		return
	}

	vote, err := h.store.GetVote(r.Context(), poll.ID, voterID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.JSONResponse(w, http.StatusOK, models.MyVoteResponse{HasVoted: false})
		return
	}
	if err != nil {
		writeStoreError(w, err, h.kind, "get vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyVoteResponse{
		HasVoted: true,
		OptionID: vote.OptionID,
		VotedAt:  &vote.CreatedAt,
	})
}
