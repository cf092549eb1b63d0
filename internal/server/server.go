// Package server defines the Server struct that composes the app's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the classifier loaded from the model artifact
//   - the Prometheus collectors
//   - http.Server
//
// It provides constructors and start/shutdown logic to run the application cleanly.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/iris-api/internal/config"
	"github.com/deppfellow/iris-api/internal/feature"
	loggerPkg "github.com/deppfellow/iris-api/internal/logger"
	"github.com/deppfellow/iris-api/internal/metrics"
	"github.com/deppfellow/iris-api/internal/model"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. Everything it holds is created before the
// listener opens and is read-only while requests are served.
type Server struct {
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// Model is the classifier every prediction goes through.
	Model model.Classifier

	Metrics *metrics.Metrics

	httpServer *http.Server
}

// New constructs a Server and loads the model artifact named by
// cfg.Model.Path. A missing or malformed artifact, or one built for a
// different number of features, fails startup.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	start := time.Now()

	forest, err := model.Load(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model: %w", err)
	}

	if forest.NumFeatures() != feature.Count {
		return nil, fmt.Errorf("model %s expects %d features, service provides %d",
			cfg.Model.Path, forest.NumFeatures(), feature.Count)
	}

	logger.Info().
		Str("path", cfg.Model.Path).
		Int("trees", len(forest.Trees)).
		Ints("classes", forest.Classes).
		Dur("duration", time.Since(start)).
		Msg("model loaded")

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Model:         forest,
		Metrics:       metrics.New(),
	}, nil
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    s.Addr(),
		Handler: handler,

		// Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Config.Server.Host, s.Config.Server.Port)
}

// Start runs the HTTP server. It blocks until the server stops and returns
// nil after a graceful Shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("addr", s.httpServer.Addr).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}
