package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soundprediction/orgsignal"
	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/metrics"
	"github.com/soundprediction/orgsignal/pkg/server/handlers"
	"github.com/soundprediction/orgsignal/pkg/telemetry"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	pipeline *orgsignal.Pipeline
	metrics  *metrics.Registry
	logger   *slog.Logger
	server   *http.Server

	// guards the categorizer's override registry across handlers
	overridesMu sync.RWMutex
}

// New creates a new server instance. A nil registry uses
// metrics.DefaultRegistry() and a nil logger slog.Default().
func New(cfg *config.Config, pipeline *orgsignal.Pipeline, reg *metrics.Registry, logger *slog.Logger) *Server {
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:   cfg,
		pipeline: pipeline,
		metrics:  reg,
		logger:   logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	if s.config.Server.Mode != "" {
		gin.SetMode(s.config.Server.Mode)
	}

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(metricsMiddleware(s.metrics))
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Handler returns the configured router. Setup must run first.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.pipeline, &s.overridesMu)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/healthcheck", healthHandler.HealthCheck) // Legacy endpoint
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{})))

	if s.pipeline == nil {
		return
	}
	extractHandler := handlers.NewExtractHandler(s.pipeline, &s.overridesMu, s.logger)
	categorizeHandler := handlers.NewCategorizeHandler(s.pipeline.Categorizer(), &s.overridesMu)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/extract", extractHandler.Extract)
		v1.POST("/extract/batch", extractHandler.ExtractBatch)
		v1.POST("/preprocess", extractHandler.Preprocess)

		v1.POST("/categorize", categorizeHandler.Categorize)
		v1.POST("/categorize/batch", categorizeHandler.CategorizeBatch)
		v1.GET("/categories", categorizeHandler.Categories)

		overrides := v1.Group("/overrides")
		{
			overrides.GET("", categorizeHandler.ListOverrides)
			overrides.GET("/export", categorizeHandler.ExportOverrides)
			overrides.POST("/import", categorizeHandler.ImportOverrides)
			overrides.GET("/:name", categorizeHandler.GetOverride)
			overrides.PUT("/:name", categorizeHandler.PutOverride)
			overrides.DELETE("/:name", categorizeHandler.DeleteOverride)
		}
	}
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

// loggingMiddleware logs one line per request
func loggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// metricsMiddleware records request counts and latency by route template
func metricsMiddleware(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		reg.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware tags the request context for telemetry
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		source := "server"
		if client := c.GetHeader("X-Client-Name"); client != "" {
			source = "server:" + client
		}
		ctx := telemetry.WithRequestSource(c.Request.Context(), source)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
