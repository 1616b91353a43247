package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minato/dormgate/internal/domain"
	"github.com/minato/dormgate/internal/service"
)

// EventHandler handles access event ingestion and the event log read surface.
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type createEventRequest struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subject_id" validate:"required"`
	Location     string     `json:"location" validate:"required"`
	Outcome      string     `json:"outcome" validate:"required,oneof=granted denied"`
	DenialReason *string    `json:"denial_reason,omitempty"`
	ReaderID     *string    `json:"reader_id,omitempty"`
	OccurredAt   *time.Time `json:"occurred_at,omitempty"`
}

// Create ingests one access event.
func (h *EventHandler) Create(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := service.IngestInput{
		ID:        req.ID,
		SubjectID: req.SubjectID,
		Location:  req.Location,
		Outcome:   domain.Outcome(req.Outcome),
		ReaderID:  req.ReaderID,
	}
	if req.DenialReason != nil {
		reason := domain.DenialReason(*req.DenialReason)
		in.DenialReason = &reason
	}
	if req.OccurredAt != nil {
		in.OccurredAt = *req.OccurredAt
	}

	ev, err := h.events.Ingest(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, ev)
}

// List returns the event log most-recent-first.
func (h *EventHandler) List(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return &domain.ValidationError{Field: "limit", Message: "must be a non-negative integer"}
		}
		limit = n
	}

	filter := domain.EventFilter{
		SubjectID: c.QueryParam("subject_id"),
		Location:  c.QueryParam("location"),
		Outcome:   domain.Outcome(c.QueryParam("outcome")),
	}
	if filter.Outcome != "" && !filter.Outcome.Valid() {
		return &domain.ValidationError{Field: "outcome", Message: "must be granted or denied"}
	}
	if raw := c.QueryParam("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return &domain.ValidationError{Field: "since", Message: "must be an RFC3339 timestamp"}
		}
		filter.Since = since
	}

	events, err := h.events.ListEvents(c.Request().Context(), actor, filter, limit)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, events)
}
