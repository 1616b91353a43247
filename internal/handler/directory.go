package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minato/dormgate/internal/domain"
	"github.com/minato/dormgate/internal/service"
)

// DirectoryHandler administers the manager registrations that drive
// notification routing.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// AssignManager registers a manager for a location.
func (h *DirectoryHandler) AssignManager(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.directory.AssignManager(c.Request().Context(), actor, c.Param("location"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveManager unregisters a manager from a location.
func (h *DirectoryHandler) RemoveManager(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.directory.RemoveManager(c.Request().Context(), actor, c.Param("location"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
