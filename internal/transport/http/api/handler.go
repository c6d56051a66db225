// Package api provides the HTTP handlers of the request/response contracts.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/pingpong/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service  *service.Service
	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public and token-protected routes.
// upload wraps the upload route, typically with a body limit.
func (h *Handler) RegisterRoutes(e *echo.Echo, upload ...echo.MiddlewareFunc) {
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.GET("/health", h.Health)

	// Per-route so unmatched paths still reach the 404 handler.
	e.GET("/me", h.Me, h.RequireToken)
	e.POST("/friends/request", h.SendFriendRequest, h.RequireToken)
	e.POST("/friends/respond", h.RespondFriendRequest, h.RequireToken)
	e.GET("/friends", h.ListFriends, h.RequireToken)
	e.GET("/history", h.GetHistory, h.RequireToken)
	e.POST("/upload", h.Upload, append([]echo.MiddlewareFunc{h.RequireToken}, upload...)...)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	if err := h.service.Ping(ctx); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"online": h.service.Hub().Count(),
	})
}
