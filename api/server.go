package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	v1 "github.com/yourusername/sysdiag/api/v1"
	"github.com/yourusername/sysdiag/core"
	"github.com/yourusername/sysdiag/web"
)

// Version is reported by the health endpoint
var Version = "dev"

// Server represents the API server
type Server struct {
	app      *core.App
	config   core.WebConfig
	v1Router *v1.Router
	engine   *gin.Engine
	log      *logrus.Entry
}

// NewServer creates a new API server
func NewServer(app *core.App, config core.WebConfig, logger logrus.FieldLogger) (*Server, error) {
	if logger == nil {
		logger = core.NewDiscardLogger()
	}
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		app:    app,
		config: config,
		engine: gin.New(),
		log:    logger.WithField("component", "api"),
	}
	server.v1Router = v1.NewRouter(app, config, server.log)

	if err := server.setupRoutes(); err != nil {
		return nil, err
	}
	return server, nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() error {
	s.engine.Use(v1.RequestIDMiddleware())
	s.engine.Use(v1.LoggingMiddleware(s.log))
	s.engine.Use(v1.ErrorHandlingMiddleware(s.log))

	if err := web.SetupWebRoutes(s.engine, s.app); err != nil {
		return fmt.Errorf("failed to set up report pages: %w", err)
	}

	s.engine.GET("/health", s.healthCheck)
	s.v1Router.Register(s.engine)

	s.engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/report/live")
	})
	s.engine.NoRoute(func(c *gin.Context) {
		v1.SendError(c, http.StatusNotFound, v1.ErrorCodeNotFound, "no route for "+c.Request.URL.Path, nil)
	})
	return nil
}

// healthCheck provides a simple health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	status := gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().Unix(),
		"version":        Version,
		"window_samples": s.app.Window.Len(),
	}
	if s.app.Store != nil {
		status["storage"] = s.app.Store.GetStorageInfo()
	}
	if _, id := s.app.LatestReport(); id != "" {
		status["latest_report"] = id
	}
	c.JSON(http.StatusOK, status)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", server.Addr).Info("API server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	s.log.Info("shutting down server")
	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.log.Info("server shutdown complete")
	return nil
}

// GetEngine returns the Gin engine (for testing purposes)
func (s *Server) GetEngine() *gin.Engine {
	return s.engine
}

// GetAccessURL returns the access URL for the API
func (s *Server) GetAccessURL() string {
	host := s.config.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, s.config.Port)
}

// PrintStartupInfo prints startup information
func (s *Server) PrintStartupInfo() {
	fmt.Printf("🚀 sysdiag server\n")
	fmt.Printf("📍 API Server: %s\n", s.GetAccessURL())
	fmt.Printf("📊 Live report: %s/report/live\n", s.GetAccessURL())
	fmt.Printf("❤️  Health Check: %s/health\n", s.GetAccessURL())
	fmt.Printf("\nAvailable Endpoints:\n")
	fmt.Printf("  POST /v1/analyze          - Analyze posted samples\n")
	fmt.Printf("  GET  /v1/analysis/live    - Analyze the live window\n")
	fmt.Printf("  GET  /v1/samples          - Latest samples\n")
	fmt.Printf("  GET  /v1/reports          - Archived reports\n")
	fmt.Printf("  GET  /v1/reports/:id      - One archived report\n")
	fmt.Printf("\nPress Ctrl+C to stop the server\n")
}
