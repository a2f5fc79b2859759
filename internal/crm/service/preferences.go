package service

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/store"
)

// DefaultActiveTab is the tab shown before any preference is stored.
const DefaultActiveTab = "dashboard"

var preferenceKeys = []string{
	store.KeyActiveTab,
	store.KeyFilterCargo,
	store.KeyFilterSales,
	store.KeyFilterDirection,
	store.KeyFilterLine,
	store.KeyFilterCustomsPriority,
}

// Preferences are the persisted UI selections.
type Preferences struct {
	ActiveTab             string `json:"active_tab"`
	FilterCargo           string `json:"filter_cargo"`
	FilterSales           string `json:"filter_sales"`
	FilterDirection       string `json:"filter_direction"`
	FilterLine            string `json:"filter_line"`
	FilterCustomsPriority string `json:"filter_customs_priority"`
}

// Preferences returns the stored UI selections, with "dashboard" and "All" as defaults.
func (s *CRMService) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()

	get := func(key, def string) string {
		if v, ok := s.prefs[key]; ok && v != "" {
			return v
		}
		return def
	}
	return Preferences{
		ActiveTab:             get(store.KeyActiveTab, DefaultActiveTab),
		FilterCargo:           get(store.KeyFilterCargo, FilterAll),
		FilterSales:           get(store.KeyFilterSales, FilterAll),
		FilterDirection:       get(store.KeyFilterDirection, FilterAll),
		FilterLine:            get(store.KeyFilterLine, FilterAll),
		FilterCustomsPriority: get(store.KeyFilterCustomsPriority, FilterAll),
	}
}

func validatePreference(key, value string) error {
	if !slices.Contains(preferenceKeys, key) {
		return fmt.Errorf("%w: unknown preference %q", model.ErrValidation, key)
	}
	if key == store.KeyFilterCustomsPriority && value != FilterAll && value != CustomsPriorityOnly {
		return fmt.Errorf("%w: %s must be %q or %q", model.ErrValidation, key, FilterAll, CustomsPriorityOnly)
	}
	return nil
}

// SetPreference stores one UI selection. Unknown keys fail with model.ErrValidation.
func (s *CRMService) SetPreference(ctx context.Context, key, value string) error {
	return s.SetPreferences(ctx, map[string]string{key: value})
}

// SetPreferences validates every selection and then stores them in key order.
// Nothing is written when any key or value is invalid.
func (s *CRMService) SetPreferences(ctx context.Context, values map[string]string) error {
	for key, value := range values {
		if err := validatePreference(key, value); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if err := store.SaveJSON(ctx, s.records, key, values[key]); err != nil {
			return fmt.Errorf("failed to persist preference %s: %w", key, err)
		}
		s.prefs[key] = values[key]
	}
	return nil
}
