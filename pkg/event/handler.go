package event

import (
	"context"
	"net/http"

	"github.com/checkin-tools/checkin-manager/internal/handler"
	"github.com/checkin-tools/checkin-manager/pkg/model"
	"github.com/gin-gonic/gin"
)

func NewHandler(eventService eventService) Handler {
	return Handler{eventService}
}

type Handler struct {
	eventService eventService
}

type eventService interface {
	Sync(ctx context.Context, eventID uint) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Find(ctx context.Context, id uint) (*model.Event, error)
	Reset(ctx context.Context) error
}

// List mirrored events
func (h Handler) List(c *gin.Context) {
	events, err := h.eventService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// Find one mirrored event
func (h Handler) Find(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Find(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Sync one event from the remote service into the mirror
func (h Handler) Sync(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Sync(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Reset wipes the mirror
func (h Handler) Reset(c *gin.Context) {
	if err := h.eventService.Reset(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
