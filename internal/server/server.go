// Package server exposes the weekly reports over a small JSON API
// consumed by the dashboard frontend.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lesleyera/cncreport/internal/report"
	"github.com/lesleyera/cncreport/internal/week"
)

// Reporter builds report bundles. The pipeline's Loader satisfies it.
type Reporter interface {
	Weeks() []week.Range
	LoadWeek(ctx context.Context, label string) *report.Bundle
}

// Server is the HTTP server for serving report bundles.
type Server struct {
	reporter Reporter
	mux      *http.ServeMux
	log      zerolog.Logger
}

// New creates a new Server.
func New(reporter Reporter, log zerolog.Logger) *Server {
	s := &Server{
		reporter: reporter,
		mux:      http.NewServeMux(),
		log:      log.With().Str("component", "server").Logger(),
	}
	s.routes()
	return s
}

// Serve starts the server on the given port and blocks.
func Serve(reporter Reporter, port int, log zerolog.Logger) error {
	s := New(reporter, log)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.Handler())
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/weeks", s.handleWeeks)
	s.mux.HandleFunc("/api/report", s.handleReport)
	s.mux.HandleFunc("/healthz", s.handleHealth)
}

// weekItem is one selectable week in the /api/weeks response.
type weekItem struct {
	Label  string `json:"label"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Period string `json:"period"`
}

func (s *Server) handleWeeks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ranges := s.reporter.Weeks()
	items := make([]weekItem, 0, len(ranges))
	for _, wr := range ranges {
		items = append(items, weekItem{
			Label:  wr.Label,
			Start:  wr.StartDate(),
			End:    wr.EndDate(),
			Period: wr.Display(),
		})
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	label := r.URL.Query().Get("week")
	bundle := s.reporter.LoadWeek(r.Context(), label)
	s.writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encoding response")
	}
}
