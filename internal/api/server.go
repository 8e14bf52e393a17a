package api

import (
	"log/slog"
	"net/http"

	"github.com/depeele/summarization/internal/config"
	"github.com/depeele/summarization/internal/fetch"
	"github.com/depeele/summarization/internal/highlight"
	"github.com/depeele/summarization/internal/library"
	"github.com/depeele/summarization/internal/metrics"
	"github.com/depeele/summarization/internal/notes"
	"github.com/depeele/summarization/internal/parser"
	"github.com/depeele/summarization/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the server routes to. When Loader is nil one
// is built from Library, Fetcher and Ranker. Ranker, Cache, FetchStats and
// Prefetch may be nil.
type Deps struct {
	Library    *library.Library
	Loader     *library.Loader
	Notes      *notes.Store
	Highlights *highlight.Registry
	Fetcher    fetch.Fetcher
	Cache      *fetch.Cache
	FetchStats *fetch.Stats
	Ranker     library.Ranker
	Prefetch   *pipeline.Orchestrator
	Metrics    *metrics.Metrics
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	deps   Deps
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	if deps.Loader != nil {
		deps.Library = deps.Loader.Library()
	}
	if deps.Library == nil {
		deps.Library = library.New(cfg.DocumentTTL)
	}
	if deps.Loader == nil {
		opts := parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}
		deps.Loader = library.NewLoader(deps.Library, deps.Fetcher, deps.Ranker, opts, log)
	}
	if deps.Notes == nil {
		deps.Notes = notes.NewStore()
	}
	if deps.Highlights == nil {
		deps.Highlights = highlight.NewRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(s.deps.Metrics.Middleware)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.deps.Metrics.Handler())

	// API endpoints, authenticated when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}

		r.Post("/api/documents", s.handleUploadDocument)
		r.Get("/api/documents", s.handleGetDocument)
		r.Delete("/api/documents", s.handleDeleteDocument)

		r.Post("/api/prefetch", s.handlePrefetch)
		r.Get("/api/prefetch/{jobID}", s.handleGetPrefetch)

		r.Post("/api/summary", s.handleSummary)

		r.Post("/api/anchors", s.handleCreateAnchor)
		r.Post("/api/anchors/resolve", s.handleResolveAnchor)

		r.Post("/api/notes", s.handleCreateNote)
		r.Get("/api/notes", s.handleListNotes)
		r.Get("/api/notes/{noteID}", s.handleGetNote)
		r.Delete("/api/notes/{noteID}", s.handleDeleteNote)
		r.Post("/api/notes/{noteID}/comments", s.handleAddComment)

		r.Get("/api/highlights/{noteID}", s.handleGetHighlight)
		r.Put("/api/highlights/{noteID}", s.handleAttachHighlight)
		r.Delete("/api/highlights/{noteID}", s.handleDetachHighlight)
		r.Post("/api/highlights/{noteID}/enter", s.handleEnterHighlight)
		r.Post("/api/highlights/{noteID}/leave", s.handleLeaveHighlight)

		r.Get("/api/stats/fetch", s.handleFetchStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
