package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/oncurve/internal/api/handlers"
	"github.com/ramonehamilton/oncurve/internal/api/response"
	"github.com/ramonehamilton/oncurve/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint, outside the request timeout
	s.router.Get("/ws", s.wsHub.ServeWs)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(requestDeadline(s.timeout))

		analyzeHandler := handlers.NewAnalyzeHandler(s.analyzer, s.logger.Named("analyze"))
		r.Post("/analyze", analyzeHandler.Analyze)

		deckHandler := handlers.NewDeckHandler()
		r.Route("/decks", func(r chi.Router) {
			r.Post("/parse", deckHandler.ParseDeck)
		})

		systemHandler := handlers.NewSystemHandler(s.metrics, s.lookups)
		r.Route("/system", func(r chi.Router) {
			r.Get("/version", systemHandler.GetVersion)
			r.Get("/metrics", systemHandler.GetMetrics)
		})
	})
}

// healthCheck returns server health status. A stopped hub or an
// unreachable card cache reports "degraded" with 503.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	code := http.StatusOK
	body := map[string]interface{}{
		"service": "oncurve-api",
		"version": version.GetVersion(),
		"clients": s.wsHub.ClientCount(),
	}
	if s.wsHub.IsStopped() {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if s.db != nil {
		body["database"] = "ok"
		if err := s.db.Ping(); err != nil {
			s.logger.Warn("card cache ping failed", zap.Error(err))
			body["database"] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	body["status"] = status
	response.JSON(w, code, body)
}
