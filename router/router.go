// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votehub/cliparse"
	"github.com/danielhkuo/votehub/handlers"
	"github.com/danielhkuo/votehub/middleware"
	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/realtime"
	"github.com/danielhkuo/votehub/store"
)

// Prefixes maps each URL prefix to the kind it serves
var Prefixes = map[string]string{
	"/polls":     models.KindPoll,
	"/elections": models.KindElection,
}

func NewRouter(st *store.Store, src realtime.Source, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	for prefix, kind := range Prefixes {
		registerKind(mux, prefix, st, src, cfg, kind)
	}

	// Dashboard and settings
	adminHandler := handlers.NewAdminHandler(st, cfg)
	mux.HandleFunc("GET /stats", middleware.WithLogging(adminHandler.GetStats))
	mux.HandleFunc("GET /admin/settings", middleware.WithLogging(adminHandler.GetSettings))
	mux.HandleFunc("PUT /admin/settings/{section}", middleware.WithLogging(adminHandler.UpdateSettings))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("votehub API v1"))
	})

	return mux
}

// registerKind mounts the poll, voting and results routes under prefix
func registerKind(mux *http.ServeMux, prefix string, st *store.Store, src realtime.Source, cfg cliparse.Config, kind string) {
	pollHandler := handlers.NewPollHandler(st, cfg, kind)
	votingHandler := handlers.NewVotingHandler(st, cfg, kind)
	resultsHandler := handlers.NewResultsHandler(st, src, kind)

	// Browsing (public)
	mux.HandleFunc("GET "+prefix, middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET "+prefix+"/{id}", middleware.WithLogging(pollHandler.GetPoll))

	// Management (admin operations)
	mux.HandleFunc("POST "+prefix, middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("PUT "+prefix+"/{id}", middleware.WithLogging(pollHandler.UpdatePoll))
	mux.HandleFunc("DELETE "+prefix+"/{id}", middleware.WithLogging(pollHandler.DeletePoll))
	mux.HandleFunc("POST "+prefix+"/{id}/options", middleware.WithLogging(pollHandler.AddOption))
	mux.HandleFunc("POST "+prefix+"/{id}/toggle", middleware.WithLogging(pollHandler.ToggleStatus))
	mux.HandleFunc("POST "+prefix+"/{id}/end", middleware.WithLogging(pollHandler.EndPoll))

	// Voting (voter identity)
	mux.HandleFunc("POST "+prefix+"/{id}/votes", middleware.WithLogging(votingHandler.SubmitVote))
	mux.HandleFunc("GET "+prefix+"/{id}/my-vote", middleware.WithLogging(votingHandler.GetMyVote))

	// Results (public)
	mux.HandleFunc("GET "+prefix+"/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET "+prefix+"/{id}/results.csv", middleware.WithLogging(resultsHandler.GetResultsCSV))
	mux.HandleFunc("GET "+prefix+"/{id}/results/stream", middleware.WithLogging(resultsHandler.StreamResults))
}
