package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/bookbind/internal/assemble"
	"github.com/dgallion1/bookbind/internal/config"
	"github.com/dgallion1/bookbind/internal/manifest"
	"github.com/dgallion1/bookbind/internal/metrics"
	"github.com/dgallion1/bookbind/internal/pipeline"
	"github.com/dgallion1/bookbind/internal/validate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP preview and build server for one book.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	assembler    *assemble.Assembler
	validator    *validate.Validator
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. m may be nil, in which
// case /metrics is not served.
func NewServer(orch *pipeline.Orchestrator, a *assemble.Assembler, v *validate.Validator, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		assembler:    a,
		validator:    v,
		metrics:      m,
		log:          log,
		cfg:          cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/book.md", s.handleBookMarkdown)
	r.Get("/book", s.handleBookHTML)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// API endpoints, authenticated when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/validate", s.handleValidate)
		r.Post("/api/builds", s.handleCreateBuild)
		r.Get("/api/builds/{jobID}", s.handleBuildStatus)
		r.Get("/api/stats/builds", s.handleBuildStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// loadManifest reads the manifest on every request so edits show up without
// a restart.
func (s *Server) loadManifest(w http.ResponseWriter) (*manifest.Manifest, bool) {
	m, err := manifest.Load(s.cfg.Root, s.cfg.ManifestPath)
	if err != nil {
		s.log.Error("manifest load failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return m, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
