package session

import (
	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine, handler Handler) {
	r.POST("/session", handler.Save)
	r.GET("/session", handler.Validity)
	r.DELETE("/session", handler.SignOut)
}
