package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/checkin-tools/checkin-manager/internal/errdef"
	"github.com/checkin-tools/checkin-manager/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(logger *slog.Logger, db *gorm.DB) *repository {
	return &repository{logger, db}
}

type repository struct {
	logger *slog.Logger
	db     *gorm.DB
}

// attendeeUpdateColumns are the roster-sourced columns refreshed when a
// merge hits an attendee that already exists for the event.
var attendeeUpdateColumns = []string{
	"first_name",
	"last_name",
	"email",
	"company",
	"phone",
	"unsubscribed",
	"progression_status",
	"membership_date",
	"created_at",
	"updated_at",
}

// SaveSnapshot merges one remote event and its roster into the mirror. The
// event row is upserted by its id, the attendee rows by (event_id, user_id),
// all inside one transaction so a mid-merge failure leaves no partial state.
func (r repository) SaveSnapshot(ctx context.Context, event model.Event, attendees []model.Attendee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// associations are written explicitly below
		event.Attendees = nil

		err := tx.
			Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&event).Error
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to upsert event", "error", err, "event", event)
			return fmt.Errorf("failed to upsert event %d: %v", event.ID, err)
		}

		// an empty roster is a legal merge, skip the batch statement
		if len(attendees) == 0 {
			return nil
		}

		// the caller's slice stays untouched
		rows := make([]model.Attendee, len(attendees))
		copy(rows, attendees)
		for i := range rows {
			rows[i].ID = 0
			rows[i].EventID = event.ID
		}

		err = tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns(attendeeUpdateColumns),
			}).
			Create(&rows).Error
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to upsert attendees", "error", err, "eventId", event.ID, "count", len(attendees))
			return fmt.Errorf("failed to upsert %d attendees of event %d: %v", len(attendees), event.ID, err)
		}

		return nil
	})
}

// FindAll returns every mirrored event with its attendees. Events without a
// roster carry an empty slice, not nil, so the read model always serializes
// users as a list. No user-visible order is guaranteed.
func (r repository) FindAll(ctx context.Context) ([]model.Event, error) {
	var events []model.Event

	err := r.db.
		WithContext(ctx).
		Preload("Attendees").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find all events: %v", err)
	}

	for i := range events {
		if events[i].Attendees == nil {
			events[i].Attendees = []model.Attendee{}
		}
	}

	return events, nil
}

func (r repository) FindByID(ctx context.Context, id uint) (*model.Event, error) {
	var e *model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Attendees").
		First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find event with id %d", id)
	}
	if err != nil {
		return nil, err
	}

	if e.Attendees == nil {
		e.Attendees = []model.Attendee{}
	}

	return e, nil
}

// DeleteAll wipes both tables. Destructive reset, not scoped to an event.
func (r repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Attendee{}).Error; err != nil {
			return fmt.Errorf("failed to delete attendees: %v", err)
		}
		if err := tx.Where("1 = 1").Delete(&model.Event{}).Error; err != nil {
			return fmt.Errorf("failed to delete events: %v", err)
		}
		return nil
	})
}
