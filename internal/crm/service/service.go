// Package service owns the CRM collections. It is the only mutation surface:
// every operation updates the in-memory collection and writes the whole
// collection back to the record store before returning.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/amzmarine/crm/internal/activity"
	"github.com/amzmarine/crm/internal/assistant"
	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/crm/seed"
	"github.com/amzmarine/crm/internal/store"
)

// DefaultSalesRep is used when a record names no representative and none are registered.
const DefaultSalesRep = "ADMIN"

// Options configures a CRMService.
type Options struct {
	// SeedDemo loads the demo fixture into collections that are empty on Load.
	SeedDemo bool
	// SalesReps is the representative list used when none has been persisted.
	SalesReps []string
	// Feed receives activity entries. Nil creates a private feed.
	Feed *activity.Feed
	// Assistant backs smart import. Nil disables it.
	Assistant assistant.Assistant
}

// CRMService holds the leads, shipments, sales representatives and UI
// preferences. A single RWMutex is held across mutate and persist so that
// operations apply one at a time.
type CRMService struct {
	mu        sync.RWMutex
	records   store.RecordStore
	feed      *activity.Feed
	assistant assistant.Assistant
	opts      Options
	now       func() time.Time
	lastID    int64

	leads     []model.Lead
	shipments []model.Shipment
	salesReps []string
	prefs     map[string]string
}

func NewCRMService(records store.RecordStore, opts Options) *CRMService {
	feed := opts.Feed
	if feed == nil {
		feed = activity.NewFeed(nil)
	}
	ai := opts.Assistant
	if ai == nil {
		ai = assistant.Unavailable{}
	}
	return &CRMService{
		records:   records,
		feed:      feed,
		assistant: ai,
		opts:      opts,
		now:       time.Now,
		salesReps: slices.Clone(opts.SalesReps),
		prefs:     map[string]string{},
	}
}

// Load re-hydrates every collection from the record store. When demo seeding
// is enabled, each collection that is absent or empty is seeded and persisted.
func (s *CRMService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var leads []model.Lead
	if _, err := store.LoadJSON(ctx, s.records, store.KeyLeads, &leads); err != nil {
		return err
	}
	var shipments []model.Shipment
	if _, err := store.LoadJSON(ctx, s.records, store.KeyShipments, &shipments); err != nil {
		return err
	}
	var reps []string
	foundReps, err := store.LoadJSON(ctx, s.records, store.KeySalesReps, &reps)
	if err != nil {
		return err
	}
	if !foundReps {
		reps = slices.Clone(s.opts.SalesReps)
	}

	prefs := map[string]string{}
	for _, key := range preferenceKeys {
		var value string
		found, err := store.LoadJSON(ctx, s.records, key, &value)
		if err != nil {
			return err
		}
		if found {
			prefs[key] = value
		}
	}

	s.leads, s.shipments, s.salesReps, s.prefs = leads, shipments, reps, prefs

	if s.opts.SeedDemo && (len(s.leads) == 0 || len(s.shipments) == 0) {
		if err := s.seedDemo(ctx); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "crm state loaded",
		"leads", len(s.leads),
		"shipments", len(s.shipments),
		"salesReps", len(s.salesReps),
	)
	return nil
}

func (s *CRMService) seedDemo(ctx context.Context) error {
	fixture, err := seed.Demo(model.Today())
	if err != nil {
		return err
	}
	if len(s.shipments) == 0 {
		if err := s.saveShipments(ctx, fixture.Shipments); err != nil {
			return err
		}
		slog.InfoContext(ctx, "seeded demo shipments", "count", len(fixture.Shipments))
	}
	if len(s.leads) == 0 {
		if err := s.saveLeads(ctx, fixture.Leads); err != nil {
			return err
		}
		slog.InfoContext(ctx, "seeded demo leads", "count", len(fixture.Leads))
	}
	if len(s.salesReps) == 0 {
		if err := s.saveSalesReps(ctx, slices.Clone(fixture.SalesReps)); err != nil {
			return err
		}
		slog.InfoContext(ctx, "seeded demo sales representatives", "count", len(fixture.SalesReps))
	}
	return nil
}

func (s *CRMService) saveLeads(ctx context.Context, next []model.Lead) error {
	if next == nil {
		next = []model.Lead{}
	}
	if err := store.SaveJSON(ctx, s.records, store.KeyLeads, next); err != nil {
		return fmt.Errorf("failed to persist leads: %w", err)
	}
	s.leads = next
	return nil
}

func (s *CRMService) saveShipments(ctx context.Context, next []model.Shipment) error {
	if next == nil {
		next = []model.Shipment{}
	}
	if err := store.SaveJSON(ctx, s.records, store.KeyShipments, next); err != nil {
		return fmt.Errorf("failed to persist shipments: %w", err)
	}
	s.shipments = next
	return nil
}

func (s *CRMService) saveSalesReps(ctx context.Context, next []string) error {
	if err := store.SaveJSON(ctx, s.records, store.KeySalesReps, next); err != nil {
		return fmt.Errorf("failed to persist sales representatives: %w", err)
	}
	s.salesReps = next
	return nil
}

// newID returns a millisecond timestamp string, bumped past the previous id
// and past any id already present in taken.
func (s *CRMService) newID(taken func(string) bool) string {
	next := s.now().UnixMilli()
	if next <= s.lastID {
		next = s.lastID + 1
	}
	for taken(strconv.FormatInt(next, 10)) {
		next++
	}
	s.lastID = next
	return strconv.FormatInt(next, 10)
}

// defaultSalesRep returns the first registered representative, or DefaultSalesRep.
func (s *CRMService) defaultSalesRep() string {
	if len(s.salesReps) > 0 {
		return s.salesReps[0]
	}
	return DefaultSalesRep
}

func (s *CRMService) hasSalesRep(name string) bool {
	return slices.Contains(s.salesReps, name)
}

// resolveSalesRep applies the default to an empty name and rejects a name that
// is not registered unless it equals previous.
func (s *CRMService) resolveSalesRep(name, previous string) (string, error) {
	if name == "" {
		return s.defaultSalesRep(), nil
	}
	if name == previous || s.hasSalesRep(name) {
		return name, nil
	}
	if name == DefaultSalesRep && len(s.salesReps) == 0 {
		return name, nil
	}
	return "", fmt.Errorf("%w: %s", model.ErrUnknownSalesRep, name)
}

// Activity returns the recent activity feed, newest first.
func (s *CRMService) Activity() []activity.Entry {
	return s.feed.Entries()
}

func (s *CRMService) record(ctx context.Context, level activity.Level, format string, args ...any) {
	s.feed.Record(ctx, level, fmt.Sprintf(format, args...))
}
