package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soundprediction/recommender"
	"github.com/soundprediction/recommender/pkg/config"
	"github.com/soundprediction/recommender/pkg/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	router      *gin.Engine
	recommender recommender.Recommender
	logger      *slog.Logger
	server      *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, rec recommender.Recommender, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:      cfg,
		recommender: rec,
		logger:      logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	if s.config.Server.Mode != "" {
		gin.SetMode(s.config.Server.Mode)
	}

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())
	if s.config.Server.RequestTimeout > 0 {
		s.router.Use(timeoutMiddleware(time.Duration(s.config.Server.RequestTimeout) * time.Second))
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.recommender)
	recommendHandler := handlers.NewRecommendHandler(s.recommender, s.logger)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/healthcheck", healthHandler.HealthCheck) // Legacy endpoint
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/graph_recommend", recommendHandler.GraphRecommend)
	s.router.GET("/recommend_by_name", recommendHandler.GraphRecommend) // Legacy alias
	s.router.GET("/semantic_recommend", recommendHandler.SemanticRecommend)
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping server")
	return s.server.Shutdown(ctx)
}
