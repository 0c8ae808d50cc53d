package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/heart-risk-predictor/internal/domain"
	"github.com/heart-risk-predictor/internal/metrics"
	"github.com/heart-risk-predictor/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	predictor     domain.RiskPredictor
	metrics       *metrics.Recorder
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, predictor domain.RiskPredictor, recorder *metrics.Recorder, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(
		gin.Recovery(),
		middleware.CorrelationID(),
		middleware.AuditLogger(logger),
		middleware.SecurityHeaders(),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "X-Correlation-ID"},
			ExposeHeaders: []string{"X-Correlation-ID"},
			MaxAge:        12 * time.Hour,
		}),
	)

	server := &Server{
		configManager: configManager,
		predictor:     predictor,
		metrics:       recorder,
		logger:        logger,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	rateLimitCfg := s.configManager.GetConfig().RateLimit

	api := s.router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/model_info", s.handleModelInfo)
		api.GET("/default_values", s.handleDefaultValues)
		api.POST("/predict", s.handlePredict)
		api.POST("/load_model", middleware.RateLimit(rateLimitCfg), s.handleLoadModel)
	}

	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	if dir := s.configManager.GetServerConfig().StaticDir; dir != "" {
		s.router.StaticFile("/", filepath.Join(dir, "index.html"))
		s.router.Static("/static", dir)
		s.router.NoRoute(staticFallback(dir))
	}
}

// staticFallback serves files from dir at the site root, so pages can
// reference assets like /app.js.
func staticFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(name); err != nil || !info.Mode().IsRegular() {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(name)
	}
}
