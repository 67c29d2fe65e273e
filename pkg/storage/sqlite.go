package storage

import (
	"fmt"

	"github.com/checkin-tools/checkin-manager/pkg/config"
	"github.com/checkin-tools/checkin-manager/pkg/model"
	"github.com/glebarez/sqlite"
	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/gorm"
)

// NewDatabase opens the embedded store and brings its schema up to date. The
// returned handle is the one connection for the whole process, construct it
// once in main and pass it to the repositories.
func NewDatabase(c config.Database) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", c.Path)

	// statement errors and slow queries flow through the process slog stack
	databaseConfig := gorm.Config{
		Logger:         slogGorm.New(),
		TranslateError: true,
	}

	db, err := gorm.Open(sqlite.Open(dsn), &databaseConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %v", c.Path, err)
	}

	// SQLite allows a single writer. Capping the pool at one connection
	// serializes statements from independent call sites instead of failing
	// them with a busy error mid-merge.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	// AutoMigrate is idempotent and adds columns missing from schemas
	// created by older app versions.
	err = db.AutoMigrate(
		&model.Event{},
		&model.Attendee{},

		&model.KeyValue{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %v", err)
	}

	return db, nil
}
