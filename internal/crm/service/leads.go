package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/amzmarine/crm/internal/activity"
	"github.com/amzmarine/crm/internal/crm/model"
)

// Leads returns a copy of the lead collection in insertion order.
func (s *CRMService) Leads() []model.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.leads)
}

// GetLead returns the lead with the given id or model.ErrNotFound.
func (s *CRMService) GetLead(id string) (*model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.leadIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("lead %s: %w", id, model.ErrNotFound)
	}
	lead := s.leads[i]
	return &lead, nil
}

func (s *CRMService) leadIndex(id string) int {
	return slices.IndexFunc(s.leads, func(l model.Lead) bool { return l.ID == id })
}

// CreateLead validates fields and appends a new lead with status New and
// today's date. An empty representative defaults to the first registered one.
func (s *CRMService) CreateLead(ctx context.Context, fields model.LeadFields) (*model.Lead, error) {
	fields.Normalize()
	fields.Status = model.LeadStatusNew
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.resolveSalesRep(fields.SalesName, "")
	if err != nil {
		return nil, err
	}
	fields.SalesName = rep

	lead := model.Lead{
		ID:         s.newID(func(id string) bool { return s.leadIndex(id) >= 0 }),
		Date:       model.Today(),
		LeadFields: fields,
	}
	if err := s.saveLeads(ctx, append(slices.Clone(s.leads), lead)); err != nil {
		return nil, err
	}

	s.record(ctx, activity.LevelSuccess, "Lead %s registered for %s", lead.ID, lead.Name)
	return &lead, nil
}

// UpdateLead replaces every editable field of the lead, keeping its id and
// creation date. An empty status keeps the current one. It reports false
// without writing when no lead has the id.
func (s *CRMService) UpdateLead(ctx context.Context, id string, fields model.LeadFields) (bool, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.leadIndex(id)
	if i < 0 {
		return false, nil
	}
	current := s.leads[i]

	rep, err := s.resolveSalesRep(fields.SalesName, current.SalesName)
	if err != nil {
		return false, err
	}
	fields.SalesName = rep
	if fields.Status == "" {
		fields.Status = current.Status
	}

	next := slices.Clone(s.leads)
	next[i] = model.Lead{ID: current.ID, Date: current.Date, LeadFields: fields}
	if err := s.saveLeads(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// SetLeadStatus assigns status without transition rules. It reports false
// without writing when no lead has the id.
func (s *CRMService) SetLeadStatus(ctx context.Context, id string, status model.LeadStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: lead status %q", model.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.leadIndex(id)
	if i < 0 {
		return false, nil
	}
	next := slices.Clone(s.leads)
	next[i].Status = status
	if err := s.saveLeads(ctx, next); err != nil {
		return false, err
	}

	s.record(ctx, activity.LevelInfo, "Record %s set to %s", id, status)
	return true, nil
}

// DeleteLead removes exactly one lead. Shipments it links to are untouched.
func (s *CRMService) DeleteLead(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.leadIndex(id)
	if i < 0 {
		return false, nil
	}
	if err := s.saveLeads(ctx, slices.Delete(slices.Clone(s.leads), i, i+1)); err != nil {
		return false, err
	}

	s.record(ctx, activity.LevelWarning, "Lead %s removed", id)
	return true, nil
}
