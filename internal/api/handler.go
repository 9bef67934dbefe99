package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gfbarros/vistaboard/internal/board"
	"github.com/gfbarros/vistaboard/internal/graph"
	"github.com/gfbarros/vistaboard/internal/pipeline"
)

// Deps holds what the HTTP surface needs. The API is read-only: the board
// is a consumer of the remote list, never a writer.
type Deps struct {
	Carousel *board.Carousel
	Refresh  *pipeline.Refresher
	Token    string
	Version  string
}

// NewHandler builds the router. /health is open; everything else requires
// the bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": deps.Version})
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/view", handleCurrentView(deps))
		r.Get("/view/{team}", handleTeamView(deps))
		r.Get("/teams", handleTeams(deps))
		r.Get("/records", handleRecords(deps))
		r.Get("/stats", handleStats(deps))
	})

	return r
}

func handleCurrentView(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := deps.Carousel.Current(r.Context())
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleTeamView(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := chi.URLParam(r, "team")
		v, ok, err := deps.Carousel.ViewFor(r.Context(), team)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		if !ok {
			httpError(w, http.StatusNotFound, "invalid_request_error", "unknown team %q", team)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func handleTeams(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := deps.Carousel.Teams(r.Context())
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"teams": teams})
	}
}

func handleRecords(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := deps.Carousel.Dataset(r.Context())
		if err != nil {
			writePipelineError(w, err)
			return
		}
		if ds.Empty() {
			writeJSON(w, http.StatusOK, map[string]any{
				"state":       board.StateNoData,
				"snapshot_id": ds.Stats.SnapshotID,
				"records":     []any{},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"state":       board.StateOK,
			"snapshot_id": ds.Stats.SnapshotID,
			"teams":       ds.Teams,
			"records":     ds.Records,
		})
	}
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := deps.Carousel.Dataset(r.Context())
		if err != nil {
			writePipelineError(w, err)
			return
		}
		out := map[string]any{
			"dropped_unmapped_total": deps.Refresh.DroppedTotal(),
			"last_refresh":           ds.Stats,
		}
		if ds.Empty() {
			out["state"] = board.StateNoData
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writePipelineError maps the fetch-boundary error taxonomy onto HTTP.
// Auth and fetch failures halt the render cycle: no stale fallback.
func writePipelineError(w http.ResponseWriter, err error) {
	var authErr *graph.AuthError
	if errors.As(err, &authErr) {
		httpError(w, http.StatusBadGateway, "authentication_error", "%v", err)
		return
	}
	httpError(w, http.StatusBadGateway, "api_error", "%v", err)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
