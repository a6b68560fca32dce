// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/danielhkuo/votehub/middleware"
	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/realtime"
	"github.com/danielhkuo/votehub/store"
	"github.com/danielhkuo/votehub/tally"
)

type ResultsHandler struct {
	store *store.Store
	agg   *tally.Aggregator
	src   realtime.Source
	kind  string
}

func NewResultsHandler(st *store.Store, src realtime.Source, kind string) *ResultsHandler {
	return &ResultsHandler{store: st, agg: tally.NewAggregator(st), src: src, kind: kind}
}

// resultRow is one line of the CSV export
type resultRow struct {
	Rank       int    `csv:"rank"`
	Option     string `csv:"option"`
	Party      string `csv:"party"`
	Votes      int64  `csv:"votes"`
	Percentage string `csv:"percentage"`
}

// results loads the poll (checking its kind) and tallies it
func (h *ResultsHandler) results(r *http.Request) (models.Tally, error) {
	poll, err := h.store.GetPoll(r.Context(), h.kind, r.PathValue("id"))
	if err != nil {
		return models.Tally{}, err
	}
	return h.agg.Tally(r.Context(), poll.ID)
}

// GetResults handles GET /polls/{id}/results
// Results are public while the poll runs and after it ends
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	t, err := h.results(r)
	if err != nil {
		writeStoreError(w, err, h.kind, "compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, t)
}

// GetResultsCSV handles GET /polls/{id}/results.csv
func (h *ResultsHandler) GetResultsCSV(w http.ResponseWriter, r *http.Request) {
	t, err := h.results(r)
	if err != nil {
		writeStoreError(w, err, h.kind, "compute results")
		return
	}

	rows := make([]resultRow, len(t.Results))
	for i, res := range t.Results {
		rows[i] = resultRow{
			Rank:       res.Rank,
			Option:     res.Text,
			Party:      res.Party,
			Votes:      res.Votes,
			Percentage: strconv.FormatFloat(res.Percentage, 'f', 1, 64),
		}
	}

	body, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		slog.Error("failed to encode results CSV", "poll_id", t.PollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export results")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s-results.csv"`, h.kind, t.PollID))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// StreamResults handles GET /polls/{id}/results/stream
// Sends a "tally" event now and after every change to the poll's votes,
// until the client disconnects. When the end time passes it sends a final
// "tally" and an "ended" event; when the poll is deleted, an "error" event.
// Both close the stream.
func (h *ResultsHandler) StreamResults(w http.ResponseWriter, r *http.Request) {
	poll, err := h.store.GetPoll(r.Context(), h.kind, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, h.kind, "get poll")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	slog.Info("results stream opened", "kind", h.kind, "poll_id", poll.ID)

	ctx := r.Context()
	if !models.IsEnded(poll, h.store.Now()) && poll.EndsAt != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, *poll.EndsAt)
		defer cancel()
	}

	err = h.agg.Follow(ctx, h.src, poll.ID, func(t models.Tally, err error) {
		if err != nil {
			slog.Warn("failed to refresh results", "poll_id", poll.ID, "error", err)
			writeEvent(w, "error", models.ErrorResponse{Error: "Results unavailable", Message: "could not load results"})
		} else {
			writeEvent(w, "tally", t)
		}
		flusher.Flush()
	})

	switch {
	case errors.Is(err, tally.ErrPollDeleted):
		writeEvent(w, "error", models.ErrorResponse{Error: http.StatusText(http.StatusNotFound), Message: noun(h.kind) + " was deleted"})
		flusher.Flush()
		slog.Info("results stream closed, poll deleted", "kind", h.kind, "poll_id", poll.ID)
		return
	case errors.Is(err, context.DeadlineExceeded) && r.Context().Err() == nil:
		if t, err := h.agg.Tally(r.Context(), poll.ID); err == nil {
			writeEvent(w, "tally", t)
		}
		writeEvent(w, "ended", models.StatusResponse{PollID: poll.ID, Status: models.StatusEnded})
		flusher.Flush()
		slog.Info("results stream closed, poll ended", "kind", h.kind, "poll_id", poll.ID)
		return
	case err != nil && !errors.Is(err, r.Context().Err()):
		slog.Warn("results stream ended", "poll_id", poll.ID, "error", err)
		return
	}
	slog.Info("results stream closed", "kind", h.kind, "poll_id", poll.ID)
}

// writeEvent writes one server-sent event with a JSON payload
func writeEvent(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode event", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
