package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/checkin-tools/checkin-manager/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) Save(ctx context.Context, key, value string) error {
	err := r.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model.KeyValue{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to save %q: %v", key, err)
	}

	return nil
}

func (r repository) Get(ctx context.Context, key string) (string, bool, error) {
	var kv model.KeyValue
	err := r.db.
		WithContext(ctx).
		First(&kv, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %v", key, err)
	}

	return kv.Value, true, nil
}

func (r repository) Remove(ctx context.Context, key string) error {
	return r.db.
		WithContext(ctx).
		Delete(&model.KeyValue{}, "key = ?", key).Error
}

func (r repository) Clear(ctx context.Context) error {
	return r.db.
		WithContext(ctx).
		Where("1 = 1").
		Delete(&model.KeyValue{}).Error
}
