package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amzmarine/crm/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one persisted key/value pair.
type Record struct {
	Key       string    `gorm:"type:varchar(100);column:record_key;primaryKey;not null"`
	Value     string    `gorm:"type:text;column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the database table name for Record
func (Record) TableName() string {
	return "records"
}

// SQLStore keeps records in a single gorm-managed table (sqlite or postgres).
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the records table and returns a store over db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate records table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var record Record
	result := s.db.WithContext(ctx).First(&record, "record_key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch record: %w", result.Error)
	}
	return []byte(record.Value), nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	record := Record{Key: key, Value: string(value)}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert record: %w", result.Error)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return database.Close(s.db)
}
