package server

import (
	"log/slog"

	"github.com/checkin-tools/checkin-manager/internal/middleware"
	"github.com/checkin-tools/checkin-manager/pkg/attendee"
	"github.com/checkin-tools/checkin-manager/pkg/event"
	"github.com/checkin-tools/checkin-manager/pkg/health"
	"github.com/checkin-tools/checkin-manager/pkg/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func GetEngine(logger *slog.Logger, eventHandler event.Handler, attendeeHandler attendee.Handler, sessionHandler session.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middleware.ErrorHandler())

	r.GET("/health", health.Health)

	event.Routes(r, eventHandler)
	attendee.Routes(r, attendeeHandler)
	session.Routes(r, sessionHandler)

	return r
}
