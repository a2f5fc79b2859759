package service

import (
	"math"
	"strings"

	"github.com/amzmarine/crm/internal/crm/model"
)

// FilterAll is the filter value that matches everything. An empty value does too.
const FilterAll = "All"

// CustomsPriorityOnly restricts a shipment listing to shipments needing customs action.
const CustomsPriorityOnly = "Priority"

func matches(filter, value string) bool {
	return filter == "" || filter == FilterAll || filter == value
}

// LeadFilter selects leads by exact field values.
type LeadFilter struct {
	CargoType    string
	SalesRep     string
	ShippingLine string
}

// FilterLeads returns the leads matching every set dimension, in order.
func FilterLeads(leads []model.Lead, f LeadFilter) []model.Lead {
	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		if matches(f.CargoType, string(l.CargoType)) &&
			matches(f.SalesRep, l.SalesName) &&
			matches(f.ShippingLine, l.ShippingLine) {
			out = append(out, l)
		}
	}
	return out
}

// ShipmentFilter selects shipments. Query is a case-insensitive substring of
// the tracking number or customer name; CustomsPriority set to
// CustomsPriorityOnly keeps only shipments needing customs action.
type ShipmentFilter struct {
	Direction       string
	ShippingLine    string
	SalesRep        string
	Query           string
	CustomsPriority string
}

// FilterShipments returns the shipments matching every set dimension, in order.
func FilterShipments(shipments []model.Shipment, f ShipmentFilter) []model.Shipment {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.Shipment, 0, len(shipments))
	for _, s := range shipments {
		if !matches(f.Direction, string(s.ShipmentDirection)) ||
			!matches(f.ShippingLine, s.ShippingLine) ||
			!matches(f.SalesRep, s.SalesRep) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.TrackingNumber), query) &&
			!strings.Contains(strings.ToLower(s.CustomerName), query) {
			continue
		}
		if f.CustomsPriority == CustomsPriorityOnly && !NeedsCustomsAction(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// NeedsCustomsAction reports whether the shipment is in customs, not yet
// released, or missing any document.
func NeedsCustomsAction(s model.Shipment) bool {
	if s.Status == model.ShipmentStatusCustoms || s.DetailedCustomsStatus != model.CustomsReleased {
		return true
	}
	for _, doc := range s.Documents {
		if doc.Status == model.DocumentMissing {
			return true
		}
	}
	return false
}

// Stats are the dashboard aggregates.
type Stats struct {
	ActiveShipments int `json:"activeShipments"`
	TotalShipments  int `json:"totalShipments"`
	LeadsWon        int `json:"leadsWon"`
	TotalLeads      int `json:"totalLeads"`
	// ConversionRate is the rounded percentage of won leads.
	ConversionRate int `json:"conversionRate"`
	// Revenue is the sum of the total inland cost of every shipment, mixing currencies.
	Revenue           float64                    `json:"revenue"`
	RevenueByCurrency map[model.Currency]float64 `json:"revenueByCurrency"`
	SalesReps         []SalesRepSummary          `json:"salesReps,omitempty"`
}

// SalesRepSummary is the lead ownership of one sales representative.
type SalesRepSummary struct {
	Name  string `json:"name"`
	Leads int    `json:"leads"`
	Won   int    `json:"won"`
}

// ComputeStats aggregates the collections. Zero leads give a conversion rate of 0.
func ComputeStats(leads []model.Lead, shipments []model.Shipment) Stats {
	stats := Stats{
		TotalShipments:    len(shipments),
		TotalLeads:        len(leads),
		RevenueByCurrency: map[model.Currency]float64{},
	}
	for _, s := range shipments {
		if s.Status != model.ShipmentStatusDelivered {
			stats.ActiveShipments++
		}
		total := s.TotalInlandCost()
		stats.Revenue += total
		currency := s.Currency
		if currency == "" {
			currency = model.CurrencyUSD
		}
		stats.RevenueByCurrency[currency] += total
	}
	for _, l := range leads {
		if l.Status == model.LeadStatusWon {
			stats.LeadsWon++
		}
	}
	stats.ConversionRate = int(math.Round(float64(stats.LeadsWon) / float64(max(stats.TotalLeads, 1)) * 100))
	return stats
}

// SalesRepStats counts the leads owned and won by each representative, in
// registration order. Leads of unregistered names are not counted.
func SalesRepStats(reps []string, leads []model.Lead) []SalesRepSummary {
	out := make([]SalesRepSummary, len(reps))
	index := make(map[string]int, len(reps))
	for i, name := range reps {
		out[i].Name = name
		index[name] = i
	}
	for _, l := range leads {
		i, ok := index[l.SalesName]
		if !ok {
			continue
		}
		out[i].Leads++
		if l.Status == model.LeadStatusWon {
			out[i].Won++
		}
	}
	return out
}

// TimelineProgress is the completed fraction of the five-step timeline, from
// 0 at Pending to 1 at Delivered. Unknown statuses give 0.
func TimelineProgress(status model.ShipmentStatus) float64 {
	i := status.Index()
	if i < 0 {
		return 0
	}
	return float64(i) / float64(len(model.ShipmentStatuses)-1)
}

// DocumentCompliance counts the verified documents of a shipment.
func DocumentCompliance(s model.Shipment) (verified, total int) {
	for _, doc := range s.Documents {
		if doc.Status == model.DocumentVerified {
			verified++
		}
	}
	return verified, len(s.Documents)
}

// Stats aggregates the current collections, including the per-representative breakdown.
func (s *CRMService) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := ComputeStats(s.leads, s.shipments)
	stats.SalesReps = SalesRepStats(s.salesReps, s.leads)
	return stats
}

// SalesRepStats returns the lead counts of every registered representative.
func (s *CRMService) SalesRepStats() []SalesRepSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SalesRepStats(s.salesReps, s.leads)
}
