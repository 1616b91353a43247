package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/minato/dormgate/internal/domain"
	"github.com/minato/dormgate/internal/service"
)

// NotificationHandler handles a recipient's notification reads and mutations.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notifications most-recent-first.
func (h *NotificationHandler) List(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	opts := domain.NotificationListOptions{
		UnreadOnly: c.QueryParam("unread_only") == "true",
		Cursor:     c.QueryParam("cursor"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return &domain.ValidationError{Field: "limit", Message: "must be a non-negative integer"}
		}
		opts.Limit = n
	}

	notifications, next, err := h.notifications.List(c.Request().Context(), actor, opts)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, notifications, PaginationMeta{
		NextCursor: next,
		HasNext:    next != "",
	})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	id := c.Param("id")
	if id == "" {
		return &domain.ValidationError{Field: "id", Message: "is required"}
	}

	if err := h.notifications.MarkRead(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]bool{"read": true})
}

// UnreadCount returns the caller's authoritative unread count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]int{"unread_count": count})
}
