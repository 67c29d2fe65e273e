package event

import (
	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine, handler Handler) {
	r.GET("/events", handler.List)
	r.GET("/events/:id", handler.Find)
	r.POST("/events/:id/sync", handler.Sync)
	r.DELETE("/storage", handler.Reset)
}
