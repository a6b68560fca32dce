// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/votehub/cliparse"
	"github.com/danielhkuo/votehub/middleware"
	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/store"
)

// AdminHandler serves the dashboard counters and system settings
type AdminHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewAdminHandler(st *store.Store, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{store: st, cfg: cfg}
}

// GetStats handles GET /stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeStoreError(w, err, "", "compute stats")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}

// GetSettings handles GET /admin/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.cfg.AdminKeySalt); !ok {
		return
	}

	settings, err := h.store.Settings(r.Context())
	if err != nil {
		writeStoreError(w, err, "", "load settings")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /admin/settings/{section}
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	body, err := middleware.ReadBody(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	section := r.PathValue("section")
	settings, err := h.store.SaveSettingsSection(r.Context(), section, body, adminID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound,
			"Unknown settings section; expected one of "+strings.Join(models.SectionNames(), ", "))
		return
	}
	if err != nil {
		writeStoreError(w, err, "", "save settings")
		return
	}

	slog.Info("settings saved", "section", section, "admin", adminID)

	middleware.JSONResponse(w, http.StatusOK, settings)
}
