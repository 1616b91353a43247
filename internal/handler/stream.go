package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minato/dormgate/internal/domain"
	"github.com/minato/dormgate/internal/service"
	"github.com/minato/dormgate/internal/stream"
)

// StreamHandler serves the live unread-count subscription over SSE.
type StreamHandler struct {
	notifications *service.NotificationService
	hub           *stream.Hub
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(notifications *service.NotificationService, hub *stream.Hub) *StreamHandler {
	return &StreamHandler{notifications: notifications, hub: hub}
}

// UnreadCount streams the caller's unread count. The first frame carries the
// current count so a fresh subscriber never sees a stale zero; afterwards one
// frame is sent per observed change, with the count re-read from the store on
// each signal. Delivery is at-most-once: a client that misses frames while
// disconnected reconciles through the pull endpoint on reconnect.
func (h *StreamHandler) UnreadCount(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.String(http.StatusInternalServerError, "stream unsupported")
	}

	ctx := c.Request().Context()
	signals, cancel := h.hub.Subscribe(actor.ID)
	defer cancel()

	for {
		count, err := h.notifications.UnreadCount(ctx, actor)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response(), "data: {\"unread_count\":%d}\n\n", count); err != nil {
			return nil
		}
		flusher.Flush()

		select {
		case <-ctx.Done():
			return nil
		case <-signals:
		}
	}
}
