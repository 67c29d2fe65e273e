package attendee

import (
	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine, handler Handler) {
	r.POST("/events/:id/attendees", handler.Create)
	r.PUT("/attendees", handler.Update)
	r.PUT("/events/:id/attendees/:userId/status", handler.CheckIn)
}
