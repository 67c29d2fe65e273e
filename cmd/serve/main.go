package main

import (
	"fmt"
	stdlog "log"
	"log/slog"
	"os"

	"github.com/checkin-tools/checkin-manager/internal/handler"
	"github.com/checkin-tools/checkin-manager/internal/log"
	"github.com/checkin-tools/checkin-manager/internal/server"
	"github.com/checkin-tools/checkin-manager/pkg/attendee"
	"github.com/checkin-tools/checkin-manager/pkg/config"
	"github.com/checkin-tools/checkin-manager/pkg/event"
	"github.com/checkin-tools/checkin-manager/pkg/marketo"
	"github.com/checkin-tools/checkin-manager/pkg/session"
	"github.com/checkin-tools/checkin-manager/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatal(err)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	jsonHandler := log.NewPrettyJSONHandler(os.Stdout, &log.PrettyJSONHandlerOptions{
		PrettyPrint: cfg.PrettyLogging,
	})
	logger := slog.New(log.New(jsonHandler))
	// gorm's statement logger writes through the default logger
	slog.SetDefault(logger)

	db, err := storage.NewDatabase(cfg.Database)
	if err != nil {
		return err
	}

	client := marketo.NewClient(logger, cfg.Marketo.BaseURL, cfg.Marketo.Timeout)

	sessionRepository := session.NewRepository(db)
	sessionSvc := session.NewService(logger, sessionRepository)

	eventRepository := event.NewRepository(logger, db)
	eventSvc := event.NewService(logger, eventRepository, client, sessionSvc)

	attendeeRepository := attendee.NewRepository(logger, db)
	attendeeSvc := attendee.NewService(logger, attendeeRepository, eventSvc, client, sessionSvc)

	if err := handler.RegisterValidation(); err != nil {
		return err
	}

	eventHandler := event.NewHandler(eventSvc)
	attendeeHandler := attendee.NewHandler(attendeeSvc)
	sessionHandler := session.NewHandler(sessionSvc)

	r := server.GetEngine(logger, eventHandler, attendeeHandler, sessionHandler)
	return r.Run(fmt.Sprintf(":%d", cfg.ServerPort))
}
