// Package v1 implements the feastline HTTP API.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/profile"
	"github.com/feastline/feastline/plugin/ai/chat"
	"github.com/feastline/feastline/server/middleware"
	"github.com/feastline/feastline/store"
)

// APIV1Service wires the API handlers to their dependencies.
type APIV1Service struct {
	Profile      *profile.Profile
	Store        *store.Store
	Orchestrator *chat.Orchestrator

	chatLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the API service. Orchestrator may be nil when
// AI is disabled; chat endpoints then return 503.
func NewAPIV1Service(p *profile.Profile, s *store.Store, orchestrator *chat.Orchestrator) *APIV1Service {
	return &APIV1Service{
		Profile:      p,
		Store:        s,
		Orchestrator: orchestrator,
		// LLM-backed endpoints get a tighter budget than plain reads.
		chatLimiter: middleware.NewRateLimiter(2, 5),
	}
}

// Register mounts all API routes on the echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	apiV1 := e.Group("/api/v1")

	apiV1.GET("/status", s.GetStatus)

	apiV1.GET("/restaurants", s.ListRestaurants)
	apiV1.GET("/restaurants/:id", s.GetRestaurant)
	apiV1.GET("/restaurants/:id/menu", s.GetRestaurantMenu)

	apiV1.GET("/orders", s.ListOrders)
	apiV1.POST("/orders", s.CreateOrder)

	chatGroup := apiV1.Group("/chat", s.chatLimiter.Middleware())
	chatGroup.POST("/query", s.HandleChatQuery)
	chatGroup.GET("/messages", s.ListChatMessages)
	chatGroup.DELETE("/messages", s.ClearChatMessages)
}

type statusResponse struct {
	Version string `json:"version"`
	Mode    string `json:"mode"`
	AI      bool   `json:"ai"`
}

// GetStatus reports instance version and whether AI is available.
func (s *APIV1Service) GetStatus(c echo.Context) error {
	return c.JSON(200, &statusResponse{
		Version: s.Profile.Version,
		Mode:    s.Profile.Mode,
		AI:      s.Orchestrator != nil,
	})
}
