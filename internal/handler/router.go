package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/minato/dormgate/internal/service"
	"github.com/minato/dormgate/internal/stream"
)

// RouterConfig carries the collaborators the HTTP surface needs.
type RouterConfig struct {
	Events          *service.EventService
	Notifications   *service.NotificationService
	Directory       *service.DirectoryService
	Tokens          *service.TokenService
	Hub             *stream.Hub
	BootstrapSecret string
	FrontendURL     string
}

// Register wires middleware and routes onto the echo instance.
func Register(e *echo.Echo, cfg RouterConfig) {
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewAppValidator()

	e.Use(middleware.RequestID())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	events := NewEventHandler(cfg.Events)
	notifications := NewNotificationHandler(cfg.Notifications)
	directory := NewDirectoryHandler(cfg.Directory)
	streamHandler := NewStreamHandler(cfg.Notifications, cfg.Hub)
	auth := NewAuthHandler(cfg.Tokens, cfg.BootstrapSecret)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")
	api.POST("/auth/token", auth.Token)

	protected := api.Group("", JWTAuth(cfg.Tokens))
	protected.GET("/auth/me", auth.Me)

	protected.POST("/events", events.Create)
	protected.GET("/events", events.List)

	protected.POST("/locations/:location/managers/:id", directory.AssignManager)
	protected.DELETE("/locations/:location/managers/:id", directory.RemoveManager)

	protected.GET("/notifications", notifications.List)
	protected.POST("/notifications/:id/read", notifications.MarkRead)
	protected.GET("/notifications/unread_count", notifications.UnreadCount)
	protected.GET("/notifications/stream", streamHandler.UnreadCount)
}
