package attendee

import (
	"context"
	"net/http"

	"github.com/checkin-tools/checkin-manager/internal/handler"
	"github.com/checkin-tools/checkin-manager/pkg/model"
	"github.com/gin-gonic/gin"
)

func NewHandler(attendeeService attendeeService) Handler {
	return Handler{attendeeService}
}

type Handler struct {
	attendeeService attendeeService
}

type attendeeService interface {
	Create(ctx context.Context, eventID uint, input Input) (*model.Attendee, error)
	Update(ctx context.Context, eventID, userID uint, input Input) (int64, error)
	CheckIn(ctx context.Context, eventID, userID uint, status string) (int64, error)
}

type CreateAttendeeRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Company      string `json:"company"`
	Phone        string `json:"phone" binding:"required,phone"`
	Unsubscribed bool   `json:"unsubscribed"`
}

// Create attendee
func (h Handler) Create(c *gin.Context) {
	eventID, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request CreateAttendeeRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	attendee, err := h.attendeeService.Create(c.Request.Context(), eventID, Input{
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		Email:        request.Email,
		Company:      request.Company,
		Phone:        request.Phone,
		Unsubscribed: request.Unsubscribed,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, attendee)
}

type UpdateAttendeeRequest struct {
	// EventID scopes the remote push to the event's workspace, the local
	// patch matches on user_id alone.
	EventID      uint   `json:"event_id" binding:"required"`
	UserID       uint   `json:"user_id" binding:"required"`
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Company      string `json:"company"`
	Phone        string `json:"phone" binding:"required,phone"`
	Unsubscribed bool   `json:"unsubscribed"`
}

type UpdatedResponse struct {
	Updated int64 `json:"updated"`
}

// Update attendee
func (h Handler) Update(c *gin.Context) {
	var request UpdateAttendeeRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	updated, err := h.attendeeService.Update(c.Request.Context(), request.EventID, request.UserID, Input{
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		Email:        request.Email,
		Company:      request.Company,
		Phone:        request.Phone,
		Unsubscribed: request.Unsubscribed,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, UpdatedResponse{Updated: updated})
}

type CheckInRequest struct {
	Status string `json:"status" binding:"required"`
}

// CheckIn attendee
func (h Handler) CheckIn(c *gin.Context) {
	eventID, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}
	userID, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return
	}

	var request CheckInRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	updated, err := h.attendeeService.CheckIn(c.Request.Context(), eventID, userID, request.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, UpdatedResponse{Updated: updated})
}
