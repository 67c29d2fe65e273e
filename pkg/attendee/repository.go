package attendee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/checkin-tools/checkin-manager/pkg/model"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(logger *slog.Logger, db *gorm.DB) *repository {
	return &repository{logger, db}
}

type repository struct {
	logger *slog.Logger
	db     *gorm.DB
}

// Create inserts one attendee scoped to its event. It is deliberately
// tolerant, a failed statement is logged and reported as not-created so the
// caller can degrade gracefully instead of unwinding.
func (r repository) Create(ctx context.Context, attendee *model.Attendee) (bool, error) {
	db := r.db.WithContext(ctx).Create(attendee)
	if db.Error != nil {
		r.logger.ErrorContext(ctx, "Failed to create attendee", "error", db.Error, "eventId", attendee.EventID, "userId", attendee.UserID)
		return false, nil
	}

	return db.RowsAffected > 0, nil
}

// editable fields, event_id and user_id are never touched by an update
var updateColumns = []string{
	"FirstName",
	"LastName",
	"Email",
	"Company",
	"Phone",
	"Unsubscribed",
	"ProgressionStatus",
}

// Update replaces the editable fields of the rows matching user_id. Zero
// matched rows is not an error, the count is returned for the caller to act
// on. Unlike Create this path is strict about statement failures.
func (r repository) Update(ctx context.Context, attendee model.Attendee) (int64, error) {
	db := r.db.
		WithContext(ctx).
		Model(&model.Attendee{}).
		Where("user_id = ?", attendee.UserID).
		Select(updateColumns).
		Updates(attendee)
	if db.Error != nil {
		return 0, fmt.Errorf("failed to update attendee %d: %v", attendee.UserID, db.Error)
	}

	return db.RowsAffected, nil
}

// UpdateStatus patches the progression status of one attendee within one
// event after a successful remote status push.
func (r repository) UpdateStatus(ctx context.Context, eventID, userID uint, status string) (int64, error) {
	db := r.db.
		WithContext(ctx).
		Model(&model.Attendee{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Update("progression_status", status)
	if db.Error != nil {
		return 0, fmt.Errorf("failed to update status of attendee %d in event %d: %v", userID, eventID, db.Error)
	}

	return db.RowsAffected, nil
}
