// Package server hosts the feastline HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/feastline/feastline/internal/profile"
	"github.com/feastline/feastline/plugin/ai"
	"github.com/feastline/feastline/plugin/ai/chat"
	apiv1 "github.com/feastline/feastline/server/router/api/v1"
	"github.com/feastline/feastline/store"
)

// Server bundles the echo instance with its dependencies.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer   *echo.Echo
	orchestrator *chat.Orchestrator
}

// NewServer creates the HTTP server. The conversational core is only
// wired when the profile enables AI and the LLM config validates.
func NewServer(ctx context.Context, p *profile.Profile, s *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	server := &Server{
		Profile:    p,
		Store:      s,
		echoServer: e,
	}

	if p.IsAIEnabled() {
		aiConfig := ai.NewConfigFromProfile(p)
		if err := aiConfig.Validate(); err != nil {
			slog.Warn("AI config invalid, chat disabled", "error", err)
		} else {
			llmService, err := ai.NewLLMService(aiConfig.LLM)
			if err != nil {
				return nil, errors.Wrap(err, "failed to create LLM service")
			}
			server.orchestrator = chat.NewOrchestrator(s, llmService, aiConfig)
			slog.Info("conversational core enabled",
				"provider", aiConfig.LLM.Provider,
				"model", aiConfig.LLM.Model)
		}
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiV1Service := apiv1.NewAPIV1Service(p, s, server.orchestrator)
	apiV1Service.Register(e)

	return server, nil
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)

	select {
	case err := <-errCh:
		return errors.Wrap(err, "failed to start server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}
	slog.Info("server stopped")
	return nil
}
