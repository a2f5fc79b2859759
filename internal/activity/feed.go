// Package activity keeps the short in-memory feed of recent CRM actions.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amzmarine/crm/internal/events"
)

// Capacity is the number of entries the feed keeps.
const Capacity = 10

// Level classifies an entry for display.
type Level string

const (
	LevelInfo     Level = "info"
	LevelSuccess  Level = "success"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Entry is a single activity record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      Level     `json:"type"`
}

// Feed holds the most recent entries, newest first. Recording is best effort:
// a publish failure is logged and never returned to the caller.
type Feed struct {
	mu        sync.RWMutex
	entries   []Entry
	publisher events.Publisher
	now       func() time.Time
}

// NewFeed creates a feed that forwards each entry to publisher. A nil publisher disables forwarding.
func NewFeed(publisher events.Publisher) *Feed {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Feed{publisher: publisher, now: time.Now}
}

// Record prepends an entry and drops the oldest beyond Capacity.
func (f *Feed) Record(ctx context.Context, level Level, message string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: f.now().UTC(),
		Message:   message,
		Type:      level,
	}

	f.mu.Lock()
	f.entries = append([]Entry{entry}, f.entries...)
	if len(f.entries) > Capacity {
		f.entries = f.entries[:Capacity]
	}
	f.mu.Unlock()

	if err := f.publisher.Publish(ctx, "activity."+string(level), entry); err != nil {
		slog.WarnContext(ctx, "failed to publish activity", "id", entry.ID, "error", err)
	}
	return entry
}

// Entries returns a snapshot of the feed, newest first.
func (f *Feed) Entries() []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}
