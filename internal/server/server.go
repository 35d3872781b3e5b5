// Package server serves rendered brackets over HTTP and pushes live
// updates to websocket clients.
//
// A [Poller] refetches the match list on an interval and broadcasts every
// change through a [Hub]: the whole list to the "bracket" room and each
// changed match to its "match:<n>" room. Render endpoints draw the most
// recent snapshot through the shared pipeline runner, so repeated requests
// for an unchanged bracket are served from the artifact cache.
//
// Routes:
//
//	GET /healthz
//	GET /api/bracket             current snapshot as JSON
//	GET /bracket.{svg,png,json,dot}?style=&view=&seed=&scale=&strict=&titles=&interactive=&detailed=
//	GET /ws?room=bracket|match:<n>
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/pipeline"
)

// Backend is the tournament API the server reads from.
// *arena.Client implements it.
type Backend interface {
	pipeline.Source
	pipeline.ProblemSource
}

// Config configures a Server.
type Config struct {
	Addr         string
	PollInterval time.Duration

	// Render holds the defaults for query parameters a request omits.
	Render pipeline.Options
}

// Server is the HTTP front of one tournament backend.
type Server struct {
	srv     *http.Server
	logger  *log.Logger
	hub     *Hub
	poller  *Poller
	backend Backend
	runner  *pipeline.Runner
	cache   cache.Cache
	render  pipeline.Options
}

// New wires a server. The runner's cache doubles as the health-checked
// store.
func New(cfg Config, backend Backend, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	hub := NewHub(logger)
	s := &Server{
		logger:  logger,
		hub:     hub,
		poller:  NewPoller(backend, hub, cfg.PollInterval, logger),
		backend: backend,
		runner:  runner,
		cache:   runner.Cache,
		render:  cfg.Render,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	s.addRoutes(r)

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Poller returns the bracket poller.
func (s *Server) Poller() *Poller { return s.poller }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Run serves until ctx is cancelled, then shuts down gracefully. The hub
// and the poller run alongside the listener; the first failure stops all
// three.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return s.poller.Run(gctx)
	})
	g.Go(func() error {
		s.logger.Info("starting http server", "addr", ln.Addr().String())
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down http server")
		return s.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown stops accepting requests and waits up to ten seconds for
// in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
