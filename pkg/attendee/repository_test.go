package attendee

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/checkin-tools/checkin-manager/pkg/config"
	"github.com/checkin-tools/checkin-manager/pkg/model"
	"github.com/checkin-tools/checkin-manager/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepository(t *testing.T) (*repository, *gorm.DB) {
	t.Helper()
	db, err := storage.NewDatabase(config.Database{Path: filepath.Join(t.TempDir(), "attendees.db")})
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Event{ID: 42, Name: "Kickoff"}).Error)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRepository(logger, db), db
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("reports created", func(t *testing.T) {
		r, _ := setupRepository(t)

		created, err := r.Create(ctx, &model.Attendee{EventID: 42, UserID: 7, FirstName: "Ann"})
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("constraint violation reports false without error", func(t *testing.T) {
		r, _ := setupRepository(t)

		created, err := r.Create(ctx, &model.Attendee{EventID: 42, UserID: 7})
		require.NoError(t, err)
		require.True(t, created)

		created, err = r.Create(ctx, &model.Attendee{EventID: 42, UserID: 7})
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("unknown event reports false without error", func(t *testing.T) {
		r, _ := setupRepository(t)

		created, err := r.Create(ctx, &model.Attendee{EventID: 99, UserID: 7})
		require.NoError(t, err)
		assert.False(t, created)
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces only the editable fields", func(t *testing.T) {
		r, db := setupRepository(t)

		created, err := r.Create(ctx, &model.Attendee{EventID: 42, UserID: 7, FirstName: "Ann", ProgressionStatus: "Registered"})
		require.NoError(t, err)
		require.True(t, created)

		rows, err := r.Update(ctx, model.Attendee{
			UserID:       7,
			FirstName:    "Anne",
			LastName:     "Smith",
			Email:        "anne@example.com",
			Company:      "Acme",
			Phone:        "5558675309",
			Unsubscribed: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		var attendee model.Attendee
		require.NoError(t, db.First(&attendee, "user_id = ?", 7).Error)
		assert.Equal(t, "Anne", attendee.FirstName)
		assert.Equal(t, "Smith", attendee.LastName)
		assert.Equal(t, 1, attendee.Unsubscribed)
		// the keys stay untouched
		assert.Equal(t, uint(42), attendee.EventID)
		assert.Equal(t, uint(7), attendee.UserID)
	})

	t.Run("unknown user affects zero rows without error", func(t *testing.T) {
		r, _ := setupRepository(t)

		rows, err := r.Update(ctx, model.Attendee{UserID: 99, FirstName: "Nobody"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	t.Run("clears fields edited to empty", func(t *testing.T) {
		r, db := setupRepository(t)

		created, err := r.Create(ctx, &model.Attendee{EventID: 42, UserID: 7, Company: "Acme"})
		require.NoError(t, err)
		require.True(t, created)

		rows, err := r.Update(ctx, model.Attendee{UserID: 7, FirstName: "Ann"})
		require.NoError(t, err)
		require.Equal(t, int64(1), rows)

		var attendee model.Attendee
		require.NoError(t, db.First(&attendee, "user_id = ?", 7).Error)
		assert.Equal(t, "", attendee.Company)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	r, db := setupRepository(t)

	created, err := r.Create(ctx, &model.Attendee{EventID: 42, UserID: 7, ProgressionStatus: "Registered"})
	require.NoError(t, err)
	require.True(t, created)

	rows, err := r.UpdateStatus(ctx, 42, 7, "Attended")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	var attendee model.Attendee
	require.NoError(t, db.First(&attendee, "user_id = ?", 7).Error)
	assert.Equal(t, "Attended", attendee.ProgressionStatus)

	rows, err = r.UpdateStatus(ctx, 42, 99, "Attended")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}
