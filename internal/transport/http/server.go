// Package http assembles the echo server: middleware, REST routes, the
// WebSocket endpoint, static uploads and metrics.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/pingpong/internal/config"
	"github.com/xiaot623/pingpong/internal/metrics"
	"github.com/xiaot623/pingpong/internal/service"
	"github.com/xiaot623/pingpong/internal/transport/http/api"
	"github.com/xiaot623/pingpong/internal/ws"
)

// NewServer creates and configures the HTTP server.
func NewServer(cfg *config.Config, svc *service.Service, wsServer *ws.Server, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := requestLevel(v)
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", redactToken(v.URI)),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))

	// Handlers
	h := api.NewHandler(svc)

	// Register Routes
	h.RegisterRoutes(e, middleware.BodyLimit(cfg.UploadMaxSize))
	e.GET("/ws/chat", wsServer.HandleWebSocket)
	e.Static("/files", cfg.UploadDir)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	return e
}

// requestLevel logs client errors at info and server errors at error.
func requestLevel(v middleware.RequestLoggerValues) slog.Level {
	if v.Status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelInfo
}
