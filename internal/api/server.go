// Package api exposes the matching system over HTTP: scoring,
// recommendation, program listings and snapshot rebuilds under /api/v1.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/matcher"
)

// RebuildFunc reloads the dataset and rebuilds the snapshot. The handler
// behind POST /api/v1/rebuild calls it synchronously.
type RebuildFunc func(ctx context.Context) (*matcher.BuildReport, error)

// Config carries the server options.
type Config struct {
	// Debug switches gin out of release mode and enables verbose logging.
	Debug bool
	// Rebuild backs the rebuild endpoint. When nil the endpoint reports
	// that rebuilding is not available on this deployment.
	Rebuild RebuildFunc
}

// Server wires the matching system into HTTP handlers.
type Server struct {
	system  *matcher.System
	rebuild RebuildFunc
	logger  *zap.Logger
	debug   bool
}

// NewServer returns a Server over the given system.
func NewServer(system *matcher.System, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		system:  system,
		rebuild: cfg.Rebuild,
		logger:  logger,
		debug:   cfg.Debug,
	}
}

// Router builds the gin engine with all routes and middleware installed.
func (s *Server) Router() *gin.Engine {
	if s.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	{
		api.POST("/match", s.match)
		api.POST("/recommend", s.recommendHandler)
		api.GET("/programs", s.programs)
		api.GET("/programs/:id", s.program)
		api.GET("/status", s.status)
		api.POST("/rebuild", s.rebuildHandler)
	}

	return r
}

// Run serves the API on addr until the context is canceled, then shuts the
// listener down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	s.logger.Info("http api listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.logger.Info("http api stopped")
	return nil
}
