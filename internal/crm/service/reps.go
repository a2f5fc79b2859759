package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/amzmarine/crm/internal/activity"
	"github.com/amzmarine/crm/internal/crm/model"
)

// SalesReps returns the registered representatives in registration order.
func (s *CRMService) SalesReps() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.salesReps)
}

// AddSalesRep registers name in uppercase. A name already present after
// normalization fails with model.ErrDuplicateSalesRep and changes nothing.
func (s *CRMService) AddSalesRep(ctx context.Context, name string) (string, error) {
	name = model.NormalizeSalesRep(name)
	if name == "" {
		return "", fmt.Errorf("%w: sales representative name is required", model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasSalesRep(name) {
		return "", fmt.Errorf("%w: %s", model.ErrDuplicateSalesRep, name)
	}
	if err := s.saveSalesReps(ctx, append(slices.Clone(s.salesReps), name)); err != nil {
		return "", err
	}

	s.record(ctx, activity.LevelSuccess, "New Sales Asset Registered: %s", name)
	return name, nil
}

// RemoveSalesRep unregisters name. Leads and shipments naming it keep the name.
func (s *CRMService) RemoveSalesRep(ctx context.Context, name string) (bool, error) {
	name = model.NormalizeSalesRep(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.salesReps, name)
	if i < 0 {
		return false, nil
	}
	if err := s.saveSalesReps(ctx, slices.Delete(slices.Clone(s.salesReps), i, i+1)); err != nil {
		return false, err
	}

	s.record(ctx, activity.LevelWarning, "Sales asset %s deregistered", name)
	return true, nil
}
