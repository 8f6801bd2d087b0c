// Package server defines the Server container that holds the process-wide
// dependencies shared by every function invocation.
//
// In Lambda it is built once per cold start. Locally it also owns the HTTP
// server that replays requests through the same functions.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/cjscheller/serverless-api-framework/internal/auth"
	"github.com/cjscheller/serverless-api-framework/internal/config"
	loggerPkg "github.com/cjscheller/serverless-api-framework/internal/logger"
)

// Server is the application container. It is read-only once constructed.
type Server struct {
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService holds the New Relic application, nil when disabled.
	LoggerService *loggerPkg.LoggerService

	// Auth signs and verifies session tokens.
	Auth *auth.JWT

	httpServer *http.Server
}

// New constructs a Server and its session provider.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	jwtProvider, err := auth.NewJWT(cfg.Auth.SecretKey,
		auth.WithTTL(cfg.Auth.TokenTTL),
		auth.WithCookieName(cfg.Auth.CookieName),
		auth.WithSecureCookie(!cfg.IsDevelopment()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session provider: %w", err)
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Auth:          jwtProvider,
	}, nil
}

// SetupHTTPServer configures the local development HTTP server.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server (when running) and flushes APM data.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.LoggerService.Shutdown()

	return nil
}
