package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/pchreport/internal/config"
	"github.com/dgallion1/pchreport/internal/labels"
	"github.com/dgallion1/pchreport/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for pchreport.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	labels       labels.Map
	template     []byte // default .docx template, may be nil
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, names labels.Map, template []byte, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		labels:       names,
		template:     template,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/reports", s.handleCreateReport)
		r.Post("/api/reports/batch", s.handleBatchReports)
		r.Route("/api/reports/{jobID}", func(r chi.Router) {
			r.Get("/status", s.handleReportStatus)
			r.Get("/rms", s.handleReportRMS)
			r.Get("/document", s.handleReportDocument)
			r.Get("/workbook", s.handleReportWorkbook)
			r.Get("/summary", s.handleReportSummary)
		})
		r.Get("/api/stats/latency", s.handleLatencyStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
