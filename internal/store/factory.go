package store

import (
	"fmt"
	"log/slog"

	"github.com/amzmarine/crm/internal/config"
	"github.com/amzmarine/crm/internal/database"
	"gorm.io/gorm"
)

// NewFromConfig opens the record store selected by cfg.Store.Driver
func NewFromConfig(cfg *config.Config) (RecordStore, error) {
	switch cfg.Store.Driver {
	case "memory":
		slog.Warn("using in-memory record store, data is lost on exit")
		return NewMemoryStore(), nil
	case "badger":
		return NewBadgerStore(cfg.Store.BadgerDir)
	case "sqlite":
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return newSQLStoreOrClose(db)
	case "postgres":
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.HealthCheck(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("database health check failed: %w", err)
		}
		return newSQLStoreOrClose(db)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func newSQLStoreOrClose(db *gorm.DB) (RecordStore, error) {
	s, err := NewSQLStore(db)
	if err != nil {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Warn("failed to close database after migration error", "error", closeErr)
		}
		return nil, err
	}
	return s, nil
}
