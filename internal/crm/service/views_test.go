package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/amzmarine/crm/internal/crm/model"
)

func sampleLeads() []model.Lead {
	mk := func(id string, cargo model.CargoType, rep string, status model.LeadStatus) model.Lead {
		return model.Lead{ID: id, LeadFields: model.LeadFields{Name: id, Phone: "1", CargoType: cargo, SalesName: rep, Status: status}}
	}
	return []model.Lead{
		mk("1", model.CargoDry, "RASHA", model.LeadStatusWon),
		mk("2", model.CargoDry, "AYA", model.LeadStatusNew),
		mk("3", model.CargoFrozen, "RASHA", model.LeadStatusLost),
		mk("4", model.CargoDry, "RASHA", model.LeadStatusQuoted),
	}
}

func sampleShipments() []model.Shipment {
	released := model.SeededDocuments(4, "2024-05-01")
	return []model.Shipment{
		{ID: "a", ShipmentFields: model.ShipmentFields{
			TrackingNumber: "AMZ-9901", CustomerName: "Global Trade Corp", ShipmentDirection: model.DirectionExport,
			ShippingLine: "MSC", SalesRep: "C.MOSTAFA", Status: model.ShipmentStatusAtSea, Currency: model.CurrencyUSD,
			DetailedCustomsStatus: model.CustomsDocsReceived, Documents: model.SeededDocuments(2, "2024-05-01"),
			InlandCosts: model.InlandCosts{InlandFreight: 450, OfficialReceipts: 120, OtherExpenses: 50},
		}},
		{ID: "b", ShipmentFields: model.ShipmentFields{
			TrackingNumber: "AMZ-8854", CustomerName: "Nile Logistics Ltd", ShipmentDirection: model.DirectionExport,
			ShippingLine: "CMA", SalesRep: "RASHA", Status: model.ShipmentStatusInTransit, Currency: model.CurrencyUSD,
			DetailedCustomsStatus: model.CustomsReleased, Documents: released,
			InlandCosts: model.InlandCosts{InlandFreight: 600, GensetCost: 150, OfficialReceipts: 200},
		}},
		{ID: "c", ShipmentFields: model.ShipmentFields{
			TrackingNumber: "AMZ-1234", CustomerName: "Delta Foods", ShipmentDirection: model.DirectionImport,
			ShippingLine: "MSC", SalesRep: "RASHA", Status: model.ShipmentStatusDelivered, Currency: model.CurrencyEGP,
			DetailedCustomsStatus: model.CustomsReleased, Documents: model.SeededDocuments(4, "2024-05-01"),
			InlandCosts: model.InlandCosts{InlandFreight: 1000, OvernightStay: 500},
		}},
	}
}

func leadIDs(leads []model.Lead) []string {
	ids := make([]string, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}
	return ids
}

func shipmentIDs(shipments []model.Shipment) []string {
	ids := make([]string, len(shipments))
	for i, s := range shipments {
		ids[i] = s.ID
	}
	return ids
}

func TestFilterLeads(t *testing.T) {
	leads := sampleLeads()

	assert.Equal(t, []string{"1", "2", "3", "4"}, leadIDs(FilterLeads(leads, LeadFilter{CargoType: FilterAll, SalesRep: FilterAll})))
	assert.Equal(t, []string{"1", "2", "4"}, leadIDs(FilterLeads(leads, LeadFilter{CargoType: "Dry"})))
	assert.Equal(t, []string{"1", "4"}, leadIDs(FilterLeads(leads, LeadFilter{CargoType: "Dry", SalesRep: "RASHA"})))
}

func TestFilterLeads_CommutativeAndIdempotent(t *testing.T) {
	leads := sampleLeads()
	byCargo := LeadFilter{CargoType: "Dry"}
	byRep := LeadFilter{SalesRep: "RASHA"}

	cargoThenRep := FilterLeads(FilterLeads(leads, byCargo), byRep)
	repThenCargo := FilterLeads(FilterLeads(leads, byRep), byCargo)
	if diff := cmp.Diff(cargoThenRep, repThenCargo); diff != "" {
		t.Errorf("filter order changed result (-cargo first +rep first):\n%s", diff)
	}

	once := FilterLeads(leads, byCargo)
	if diff := cmp.Diff(once, FilterLeads(once, byCargo)); diff != "" {
		t.Errorf("filter is not idempotent:\n%s", diff)
	}
}

func TestFilterShipments(t *testing.T) {
	shipments := sampleShipments()

	tests := []struct {
		name   string
		filter ShipmentFilter
		want   []string
	}{
		{"no filter", ShipmentFilter{}, []string{"a", "b", "c"}},
		{"all sentinel", ShipmentFilter{Direction: FilterAll, ShippingLine: FilterAll, SalesRep: FilterAll, CustomsPriority: FilterAll}, []string{"a", "b", "c"}},
		{"direction", ShipmentFilter{Direction: "Import"}, []string{"c"}},
		{"line and rep", ShipmentFilter{ShippingLine: "MSC", SalesRep: "RASHA"}, []string{"c"}},
		{"query tracking", ShipmentFilter{Query: "amz-88"}, []string{"b"}},
		{"query customer", ShipmentFilter{Query: "TRADE"}, []string{"a"}},
		{"customs priority", ShipmentFilter{CustomsPriority: CustomsPriorityOnly}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shipmentIDs(FilterShipments(shipments, tt.filter)))
		})
	}
}

func TestNeedsCustomsAction(t *testing.T) {
	s := sampleShipments()[1]
	assert.False(t, NeedsCustomsAction(s))

	inCustoms := s.Clone()
	inCustoms.Status = model.ShipmentStatusCustoms
	assert.True(t, NeedsCustomsAction(inCustoms))

	notReleased := s.Clone()
	notReleased.DetailedCustomsStatus = model.CustomsDutyPaid
	assert.True(t, NeedsCustomsAction(notReleased))

	missingDoc := s.Clone()
	missingDoc.Documents[3].Status = model.DocumentMissing
	assert.True(t, NeedsCustomsAction(missingDoc))
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleLeads(), sampleShipments())

	assert.Equal(t, 2, stats.ActiveShipments)
	assert.Equal(t, 3, stats.TotalShipments)
	assert.Equal(t, 1, stats.LeadsWon)
	assert.Equal(t, 4, stats.TotalLeads)
	assert.Equal(t, 25, stats.ConversionRate)
	assert.Equal(t, 620.0+950.0+1500.0, stats.Revenue)
	assert.Equal(t, 1570.0, stats.RevenueByCurrency[model.CurrencyUSD])
	assert.Equal(t, 1500.0, stats.RevenueByCurrency[model.CurrencyEGP])
}

func TestComputeStats_ZeroLeads(t *testing.T) {
	stats := ComputeStats(nil, nil)
	assert.Equal(t, 0, stats.ConversionRate)
	assert.Zero(t, stats.Revenue)
}

func TestComputeStats_RoundsConversion(t *testing.T) {
	leads := sampleLeads()[:3]
	leads[1].Status = model.LeadStatusWon
	assert.Equal(t, 67, ComputeStats(leads, nil).ConversionRate)
}

func TestSalesRepStats(t *testing.T) {
	got := SalesRepStats([]string{"YOUNS", "RASHA", "AYA"}, sampleLeads())

	want := []SalesRepSummary{
		{Name: "YOUNS", Leads: 0, Won: 0},
		{Name: "RASHA", Leads: 3, Won: 1},
		{Name: "AYA", Leads: 1, Won: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SalesRepStats mismatch (-want +got):\n%s", diff)
	}
}

func TestSalesRepStats_IgnoresUnregisteredNames(t *testing.T) {
	got := SalesRepStats([]string{"AYA"}, sampleLeads())
	assert.Equal(t, []SalesRepSummary{{Name: "AYA", Leads: 1}}, got)

	assert.Empty(t, SalesRepStats(nil, sampleLeads()))
}

func TestTimelineProgress(t *testing.T) {
	assert.Equal(t, 0.0, TimelineProgress(model.ShipmentStatusPending))
	assert.Equal(t, 0.5, TimelineProgress(model.ShipmentStatusAtSea))
	assert.Equal(t, 1.0, TimelineProgress(model.ShipmentStatusDelivered))
	assert.Equal(t, 0.0, TimelineProgress("Unknown"))
}

func TestDocumentCompliance(t *testing.T) {
	verified, total := DocumentCompliance(sampleShipments()[0])
	assert.Equal(t, 2, verified)
	assert.Equal(t, 4, total)
}
