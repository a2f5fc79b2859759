// Package store persists the CRM collections as JSON blobs under fixed keys.
// It keeps the contract of a browser key/value store: whole values are read and
// written per key, there are no transactions and the last writer wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted collections and UI preference scalars.
const (
	KeyLeads                 = "leads"
	KeyShipments             = "shipments"
	KeySalesReps             = "sales_reps"
	KeyActiveTab             = "active_tab"
	KeyFilterCargo           = "filter_cargo"
	KeyFilterSales           = "filter_sales"
	KeyFilterDirection       = "filter_direction"
	KeyFilterLine            = "filter_line"
	KeyFilterCustomsPriority = "filter_customs_priority"
)

// ErrNotFound is returned by Get when no value was ever saved under the key.
var ErrNotFound = errors.New("record not found")

// RecordStore is the persistence strategy behind the CRM service.
type RecordStore interface {
	// Get returns the raw value saved under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value saved under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the underlying resources.
	Close() error
}

// LoadJSON decodes the value under key into dst.
// It reports false, leaving dst untouched, when the key has never been saved.
func LoadJSON(ctx context.Context, s RecordStore, key string, dst any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, s RecordStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if err := s.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Ping checks that the store answers reads.
func Ping(ctx context.Context, s RecordStore) error {
	if _, err := s.Get(ctx, KeyLeads); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("record store unreachable: %w", err)
	}
	return nil
}
