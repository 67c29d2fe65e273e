package session

import (
	"context"
	"net/http"
	"time"

	"github.com/checkin-tools/checkin-manager/internal/handler"
	"github.com/gin-gonic/gin"
)

func NewHandler(sessionService sessionService) Handler {
	return Handler{sessionService}
}

type Handler struct {
	sessionService sessionService
}

type sessionService interface {
	SaveSession(ctx context.Context, token string, expiry time.Time) error
	IsValid(ctx context.Context) bool
	SignOut(ctx context.Context) error
}

type SaveSessionRequest struct {
	Token string `json:"token" binding:"required"`
	// ExpiryTime is epoch milliseconds, matching what the token endpoint
	// reports back to the login screen.
	ExpiryTime int64 `json:"expiryTime" binding:"required,gt=0"`
}

// Save session
func (h Handler) Save(c *gin.Context) {
	var request SaveSessionRequest

	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	err := h.sessionService.SaveSession(ctx, request.Token, time.UnixMilli(request.ExpiryTime))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusCreated)
}

type ValidityResponse struct {
	Valid bool `json:"valid"`
}

// Validity of the stored session
func (h Handler) Validity(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, ValidityResponse{Valid: h.sessionService.IsValid(ctx)})
}

// SignOut removes the stored session
func (h Handler) SignOut(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.sessionService.SignOut(ctx); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
