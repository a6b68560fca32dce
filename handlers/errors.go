// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votehub/auth"
	"github.com/danielhkuo/votehub/middleware"
	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/store"
)

// Identity headers
const (
	AdminIDHeader  = "X-Admin-ID"
	AdminKeyHeader = "X-Admin-Key"
	VoterIDHeader  = "X-Voter-ID"
)

// requireAdmin validates the admin headers and returns the admin id.
// It writes the 401 itself when they are missing or wrong.
func requireAdmin(w http.ResponseWriter, r *http.Request, salt string) (string, bool) {
	adminID := r.Header.Get(AdminIDHeader)
	if err := auth.ValidateAdminKey(adminID, r.Header.Get(AdminKeyHeader), salt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return "", false
	}
	return adminID, true
}

// requireVoter returns the canonical voter id from the request headers
func requireVoter(w http.ResponseWriter, r *http.Request) (string, bool) {
	voterID, err := auth.NormalizeVoterID(r.Header.Get(VoterIDHeader))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid voter id")
		return "", false
	}
	return voterID, true
}

// noun names the resource in error messages
func noun(kind string) string {
	if kind == models.KindElection {
		return "Election"
	}
	return "Poll"
}

// writeStoreError maps store and validation errors to responses.
// Anything unrecognised is logged and reported as a 500.
func writeStoreError(w http.ResponseWriter, err error, kind, action string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.ErrorResponse(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, noun(kind)+" not found")
	case errors.Is(err, store.ErrDuplicateVote):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted in this "+kind)
	case errors.Is(err, store.ErrPollNotActive):
		middleware.ErrorResponse(w, http.StatusConflict, noun(kind)+" is not accepting votes")
	case errors.Is(err, store.ErrInvalidOption):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Option does not belong to this "+kind)
	case errors.Is(err, store.ErrInvalidTransition):
		middleware.ErrorResponse(w, http.StatusConflict, "Status change not allowed")
	default:
		slog.Error("failed to "+action, "kind", kind, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
