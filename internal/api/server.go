package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/reportgen/internal/config"
	"github.com/dgallion1/reportgen/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for reportgen.
type Server struct {
	router  chi.Router
	svc     *pipeline.Service
	log     *slog.Logger
	cfg     config.Config
	version string
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *pipeline.Service, log *slog.Logger, cfg config.Config, version string) *Server {
	s := &Server{
		svc:     svc,
		log:     log,
		cfg:     cfg,
		version: version,
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
	if m := s.svc.Metrics(); m != nil {
		r.Handle("/metrics", m.Handler())
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/generate", s.handleGenerate)
		r.Post("/generate-from-markdown", s.handleGenerateMarkdown)
		r.Get("/download/{filename}", s.handleDownload)
		r.Delete("/cleanup", s.handleCleanup)

		r.Get("/api/renders/{renderID}", s.handleRenderStatus)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "reportgen",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every failure that is not a render result.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, errorResponse{Error: msg})
}
