package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Setting is one stored key/value row.
type Setting struct {
	Name  string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

// SQLiteSettingsRepository stores settings in a single key/value table.
type SQLiteSettingsRepository struct {
	db *gorm.DB
}

func NewSQLiteSettingsRepository(path string) (*SQLiteSettingsRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if err := db.AutoMigrate(&Setting{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite %q: %w", path, err)
	}
	return &SQLiteSettingsRepository{db: db}, nil
}

func (r *SQLiteSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var s Setting
	err := r.db.WithContext(ctx).Where("name = ?", key).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.Value, true, nil
}

func (r *SQLiteSettingsRepository) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Setting{Name: key, Value: value}).Error
}

func (r *SQLiteSettingsRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
