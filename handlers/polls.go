// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/votehub/cliparse"
	"github.com/danielhkuo/votehub/middleware"
	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/store"
)

// PollHandler serves poll management for one kind (polls or elections)
type PollHandler struct {
	store *store.Store
	cfg   cliparse.Config
	kind  string
}

func NewPollHandler(st *store.Store, cfg cliparse.Config, kind string) *PollHandler {
	return &PollHandler{store: st, cfg: cfg, kind: kind}
}

// ListPolls handles GET /polls?status=
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", models.StatusActive, models.StatusPaused, models.StatusEnded:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be active, paused or ended")
		return
	}

	polls, err := h.store.ListPolls(r.Context(), h.kind, status)
	if err != nil {
		writeStoreError(w, err, h.kind, "list polls")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.store.GetPollWithOptions(r.Context(), h.kind, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, h.kind, "get poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	var draft models.PollDraft
	if err := middleware.ParseJSONBody(r, &draft); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	draft.Kind = h.kind
	draft = draft.Normalize()

	settings, err := h.store.Settings(r.Context())
	if err != nil {
		writeStoreError(w, err, h.kind, "load settings")
		return
	}
	if err := draft.Validate(h.store.Now(), settings.MaxPollDuration()); err != nil {
		writeStoreError(w, err, h.kind, "validate poll")
		return
	}

	created, err := h.store.CreatePoll(r.Context(), draft, adminID)
	if err != nil {
		writeStoreError(w, err, h.kind, "create poll")
		return
	}

	slog.Info("poll created", "kind", h.kind, "poll_id", created.ID, "admin", adminID, "options", len(created.Options))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: created.ID,
	})
}

// UpdatePoll handles PUT /polls/{id}
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.cfg.AdminKeySalt); !ok {
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.store.GetPoll(r.Context(), h.kind, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, h.kind, "get poll")
		return
	}

	// Settings only bound a new end time
	var maxDuration time.Duration
	if req.EndsAt != nil {
		settings, err := h.store.Settings(r.Context())
		if err != nil {
			writeStoreError(w, err, h.kind, "load settings")
			return
		}
		maxDuration = settings.MaxPollDuration()
	}

	updated, err := models.ApplyUpdate(poll, req, h.store.Now(), maxDuration)
	if err != nil {
		writeStoreError(w, err, h.kind, "validate poll")
		return
	}
	if err := h.store.UpdatePoll(r.Context(), updated); err != nil {
		writeStoreError(w, err, h.kind, "update poll")
		return
	}

	slog.Info("poll updated", "kind", h.kind, "poll_id", updated.ID)

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeletePoll handles DELETE /polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.cfg.AdminKeySalt); !ok {
		return
	}

	pollID := r.PathValue("id")
	if err := h.store.DeletePoll(r.Context(), h.kind, pollID); err != nil {
		writeStoreError(w, err, h.kind, "delete poll")
		return
	}

	slog.Info("poll deleted", "kind", h.kind, "poll_id", pollID)

	w.WriteHeader(http.StatusNoContent)
}

// AddOption handles POST /polls/{id}/options
func (h *PollHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.cfg.AdminKeySalt); !ok {
		return
	}

	var draft models.OptionDraft
	if err := middleware.ParseJSONBody(r, &draft); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	draft = draft.Normalize(h.kind)
	if draft.Text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	pollID := r.PathValue("id")
	opt, err := h.store.AddOption(r.Context(), h.kind, pollID, draft)
	if err != nil {
		writeStoreError(w, err, h.kind, "add option")
		return
	}

	slog.Info("option added", "kind", h.kind, "poll_id", pollID, "option_id", opt.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{
		OptionID: opt.ID,
	})
}

// ToggleStatus handles POST /polls/{id}/toggle
func (h *PollHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.cfg.AdminKeySalt); !ok {
		return
	}

	pollID := r.PathValue("id")
	status, err := h.store.ToggleStatus(r.Context(), h.kind, pollID)
	if err != nil {
		writeStoreError(w, err, h.kind, "toggle status")
		return
	}

	slog.Info("poll status changed", "kind", h.kind, "poll_id", pollID, "status", status)

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{PollID: pollID, Status: status})
}

// EndPoll handles POST /polls/{id}/end
func (h *PollHandler) EndPoll(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.cfg.AdminKeySalt); !ok {
		return
	}

	pollID := r.PathValue("id")
	if err := h.store.EndPoll(r.Context(), h.kind, pollID); err != nil {
		writeStoreError(w, err, h.kind, "end poll")
		return
	}

	slog.Info("poll ended", "kind", h.kind, "poll_id", pollID)

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{PollID: pollID, Status: models.StatusEnded})
}
