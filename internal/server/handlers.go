package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json; charset=utf-8",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) addRoutes(r chi.Router) {
	r.Get("/healthz", s.handleHealth())
	r.Get("/api/bracket", s.handleBracket())
	for format := range contentTypes {
		r.Get("/bracket."+format, s.handleRender(format))
	}
	r.Get("/ws", s.hub.ServeWS)
}

// snapshotSource serves the poller's latest match list and falls back to
// the backend before the first successful poll.
type snapshotSource struct {
	Backend
	poller *Poller
}

func (s snapshotSource) FetchBracket(ctx context.Context) ([]bracket.Match, error) {
	if snap := s.poller.Current(); snap != nil {
		return snap.Matches, nil
	}
	return s.Backend.FetchBracket(ctx)
}

func (s snapshotSource) String() string { return "snapshot" }

func (s *Server) handleBracket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.poller.Current()
		if snap == nil {
			if err := s.poller.Poll(r.Context()); err != nil {
				writeErr(w, err)
				return
			}
			snap = s.poller.Current()
		}
		w.Header().Set("ETag", strconv.Quote(snap.Hash))
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleRender(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.renderOptions(r, format)
		if err != nil {
			writeErr(w, err)
			return
		}
		src := snapshotSource{Backend: s.backend, poller: s.poller}
		result, err := s.runner.Execute(r.Context(), src, opts)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("ETag", strconv.Quote(result.BracketHash))
		if result.CacheInfo.RenderHit {
			w.Header().Set("X-Cache", "hit")
		} else {
			w.Header().Set("X-Cache", "miss")
		}
		_, _ = w.Write(result.Artifacts[format])
	}
}

// renderOptions builds pipeline options from the server defaults and the
// query string.
func (s *Server) renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	d := s.render
	opts := pipeline.Options{
		View:        d.View,
		Strict:      d.Strict,
		Titles:      d.Titles,
		Formats:     []string{format},
		Style:       d.Style,
		Seed:        d.Seed,
		Scale:       d.Scale,
		Interactive: d.Interactive,
		Detailed:    d.Detailed,
		Logger:      s.logger,
	}

	q := r.URL.Query()
	if v := q.Get("view"); v != "" {
		opts.View = v
	}
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", v)
		}
		opts.Seed = seed
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v)
		}
		opts.Scale = scale
	}
	for name, field := range map[string]*bool{
		"strict":      &opts.Strict,
		"titles":      &opts.Titles,
		"interactive": &opts.Interactive,
		"detailed":    &opts.Detailed,
		"refresh":     &opts.Refresh,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
		}
		*field = b
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (s *Server) handleHealth() http.HandlerFunc {
	type result struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]result{
			"cache":   {Status: "ok"},
			"backend": {Status: "ok"},
		}
		status := http.StatusOK

		if p, ok := s.cache.(cache.Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				s.logger.Error("health check failed", "name", "cache", "error", err)
				checks["cache"] = result{Status: "error", Error: err.Error()}
				status = http.StatusServiceUnavailable
			}
		}

		// A missing bracket is a normal state between tournaments.
		if err := s.poller.Err(); err != nil && !errors.Is(err, errors.ErrCodeNoBracket) {
			s.logger.Error("health check failed", "name", "backend", "error", err)
			checks["backend"] = result{Status: "error", Error: errors.UserMessage(err)}
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, checks)
	}
}
