package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/store"
)

var testReps = []string{"C.MOSTAFA", "RASHA", "AYA", "YOUNS"}

// countingStore counts writes per key.
type countingStore struct {
	*store.MemoryStore
	mu     sync.Mutex
	puts   map[string]int
	putErr error
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: store.NewMemoryStore(), puts: map[string]int{}}
}

func (s *countingStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts[key]++
	return s.MemoryStore.Put(ctx, key, value)
}

func (s *countingStore) writes(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts[key]
}

func newTestService(t *testing.T) (*CRMService, *countingStore) {
	t.Helper()
	records := newCountingStore()
	svc := NewCRMService(records, Options{SalesReps: testReps})
	require.NoError(t, svc.Load(context.Background()))
	return svc, records
}

func leadFields(name string) model.LeadFields {
	return model.LeadFields{Name: name, Phone: "0100223344", CargoType: model.CargoDry, Route: "ALX -> HAM"}
}

func acmeShipment() model.ShipmentFields {
	return model.ShipmentFields{
		TrackingNumber:   "AMZ-TEST1",
		CustomerName:     "Acme",
		Origin:           "Alexandria",
		Destination:      "Rotterdam",
		CargoDescription: "Textiles",
	}
}

func TestCreateLead(t *testing.T) {
	svc, records := newTestService(t)
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, leadFields("Mohamed Ahmed"))
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, model.LeadStatusNew, lead.Status)
	assert.Equal(t, model.Today(), lead.Date)
	assert.Equal(t, "C.MOSTAFA", lead.SalesName)
	assert.Equal(t, 1, records.writes(store.KeyLeads))
	require.Len(t, svc.Activity(), 1)
}

func TestCreateLead_IgnoresSuppliedStatus(t *testing.T) {
	svc, _ := newTestService(t)
	fields := leadFields("Sara")
	fields.Status = model.LeadStatusWon

	lead, err := svc.CreateLead(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusNew, lead.Status)
}

func TestCreateLead_UniqueIDsWithinOneMillisecond(t *testing.T) {
	svc, _ := newTestService(t)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		lead, err := svc.CreateLead(context.Background(), leadFields(fmt.Sprintf("lead %d", i)))
		require.NoError(t, err)
		assert.False(t, seen[lead.ID], "duplicate id %s", lead.ID)
		seen[lead.ID] = true
	}
}

func TestCreateLead_Validation(t *testing.T) {
	svc, records := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateLead(ctx, model.LeadFields{Name: "No phone"})
	assert.ErrorIs(t, err, model.ErrValidation)

	fields := leadFields("Ghost rep")
	fields.SalesName = "nobody"
	_, err = svc.CreateLead(ctx, fields)
	assert.ErrorIs(t, err, model.ErrUnknownSalesRep)

	assert.Zero(t, records.writes(store.KeyLeads))
	assert.Empty(t, svc.Leads())
}

func TestCreateLead_DefaultsToAdminWithoutReps(t *testing.T) {
	svc := NewCRMService(store.NewMemoryStore(), Options{})
	require.NoError(t, svc.Load(context.Background()))

	lead, err := svc.CreateLead(context.Background(), leadFields("Solo"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSalesRep, lead.SalesName)
}

func TestUpdateLead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	lead, err := svc.CreateLead(ctx, leadFields("Mohamed"))
	require.NoError(t, err)

	fields := leadFields("Mohamed Ahmed")
	fields.SalesName = "rasha"
	fields.Status = model.LeadStatusQuoted
	found, err := svc.UpdateLead(ctx, lead.ID, fields)
	require.NoError(t, err)
	require.True(t, found)

	updated, err := svc.GetLead(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, updated.ID)
	assert.Equal(t, lead.Date, updated.Date)
	assert.Equal(t, "Mohamed Ahmed", updated.Name)
	assert.Equal(t, "RASHA", updated.SalesName)
	assert.Equal(t, model.LeadStatusQuoted, updated.Status)
}

func TestUpdateLead_KeepsRemovedRepWhenUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fields := leadFields("Mohamed")
	fields.SalesName = "YOUNS"
	lead, err := svc.CreateLead(ctx, fields)
	require.NoError(t, err)

	_, err = svc.RemoveSalesRep(ctx, "YOUNS")
	require.NoError(t, err)

	fields.Notes = "call back"
	found, err := svc.UpdateLead(ctx, lead.ID, fields)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMutations_UnknownIDIsNoop(t *testing.T) {
	svc, records := newTestService(t)
	ctx := context.Background()

	found, err := svc.UpdateLead(ctx, "missing", leadFields("x"))
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.SetLeadStatus(ctx, "missing", model.LeadStatusWon)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.SetShipmentStatus(ctx, "missing", model.ShipmentStatusDelivered)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.SetDetailedCustomsStatus(ctx, "missing", model.CustomsReleased)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.UpdateShipment(ctx, "missing", acmeShipment())
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.ToggleDocumentStatus(ctx, "missing", "1")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.DeleteLead(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.DeleteShipment(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	assert.Zero(t, records.writes(store.KeyLeads))
	assert.Zero(t, records.writes(store.KeyShipments))
}

func TestSetLeadStatus_AnyTransition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	lead, err := svc.CreateLead(ctx, leadFields("Mohamed"))
	require.NoError(t, err)

	for _, status := range []model.LeadStatus{model.LeadStatusWon, model.LeadStatusNew, model.LeadStatusLost, model.LeadStatusContacted} {
		found, err := svc.SetLeadStatus(ctx, lead.ID, status)
		require.NoError(t, err)
		require.True(t, found)

		got, err := svc.GetLead(lead.ID)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	_, err = svc.SetLeadStatus(ctx, lead.ID, "Closed")
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestCreateShipment_Defaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	existing, err := svc.CreateShipment(ctx, model.ShipmentFields{TrackingNumber: "AMZ-1", CustomerName: "First", ShippingLine: "MSC"})
	require.NoError(t, err)

	shipment, err := svc.CreateShipment(ctx, acmeShipment())
	require.NoError(t, err)

	assert.NotEqual(t, existing.ID, shipment.ID)
	assert.Equal(t, model.ShipmentStatusPending, shipment.Status)
	assert.Equal(t, model.CustomsNotStarted, shipment.DetailedCustomsStatus)
	require.Len(t, shipment.Documents, 4)
	for _, doc := range shipment.Documents {
		assert.Equal(t, model.DocumentMissing, doc.Status)
	}
	assert.Equal(t, "C.MOSTAFA", shipment.SalesRep)
}

func TestCreateShipment_StrictShippingLine(t *testing.T) {
	svc, _ := newTestService(t)
	fields := acmeShipment()
	fields.ShippingLine = "Evergreen"

	_, err := svc.CreateShipment(context.Background(), fields)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSetShipmentStatus_DeliveredReducesActiveCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateShipment(ctx, model.ShipmentFields{TrackingNumber: "AMZ-1", CustomerName: "First"})
	require.NoError(t, err)
	shipment, err := svc.CreateShipment(ctx, acmeShipment())
	require.NoError(t, err)

	before := svc.Stats().ActiveShipments
	found, err := svc.SetShipmentStatus(ctx, shipment.ID, model.ShipmentStatusDelivered)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, before-1, svc.Stats().ActiveShipments)
}

func TestUpdateShipment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	shipment, err := svc.CreateShipment(ctx, acmeShipment())
	require.NoError(t, err)
	_, err = svc.SetShipmentStatus(ctx, shipment.ID, model.ShipmentStatusAtSea)
	require.NoError(t, err)

	fields := acmeShipment()
	fields.GensetCost = 150
	fields.InlandFreight = 600
	found, err := svc.UpdateShipment(ctx, shipment.ID, fields)
	require.NoError(t, err)
	require.True(t, found)

	updated, err := svc.GetShipment(shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, 750.0, updated.TotalInlandCost())
	assert.Equal(t, model.ShipmentStatusAtSea, updated.Status)
	assert.Len(t, updated.Documents, 4)
}

func TestToggleDocumentStatus_Cycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	shipment, err := svc.CreateShipment(ctx, acmeShipment())
	require.NoError(t, err)

	docStatus := func() model.DocumentStatus {
		s, err := svc.GetShipment(shipment.ID)
		require.NoError(t, err)
		doc, ok := s.Document("1")
		require.True(t, ok)
		return doc.Status
	}

	found, err := svc.ToggleDocumentStatus(ctx, shipment.ID, "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.DocumentPending, docStatus())

	for i := 0; i < 3; i++ {
		_, err := svc.ToggleDocumentStatus(ctx, shipment.ID, "1")
		require.NoError(t, err)
	}
	assert.Equal(t, model.DocumentPending, docStatus())

	found, err = svc.ToggleDocumentStatus(ctx, shipment.ID, "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUploadThenVerify(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	shipment, err := svc.CreateShipment(ctx, acmeShipment())
	require.NoError(t, err)

	_, err = svc.VerifyDocument(ctx, shipment.ID, "2", "")
	assert.ErrorIs(t, err, model.ErrInvalidDocumentTransition)

	attachment := model.Attachment{Key: "abc.pdf", URL: "/api/uploads/abc.pdf", Size: 12, MimeType: "application/pdf"}
	found, err := svc.MarkDocumentUploaded(ctx, shipment.ID, "2", attachment)
	require.NoError(t, err)
	require.True(t, found)

	found, err = svc.VerifyDocument(ctx, shipment.ID, "2", " stamped copy ")
	require.NoError(t, err)
	require.True(t, found)

	got, err := svc.GetShipment(shipment.ID)
	require.NoError(t, err)
	doc, _ := got.Document("2")
	assert.Equal(t, model.DocumentVerified, doc.Status)
	assert.Equal(t, model.Today(), doc.UploadDate)
	assert.Equal(t, "stamped copy", doc.ReviewerNotes)
	require.NotNil(t, doc.Attachment)
	assert.Equal(t, "abc.pdf", doc.Attachment.Key)

	_, err = svc.VerifyDocument(ctx, shipment.ID, "2", "")
	assert.ErrorIs(t, err, model.ErrInvalidDocumentTransition)
}

func TestAddDocument(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	shipment, err := svc.CreateShipment(ctx, acmeShipment())
	require.NoError(t, err)

	doc, err := svc.AddDocument(ctx, shipment.ID, "Health Certificate", "")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentMissing, doc.Status)

	got, err := svc.GetShipment(shipment.ID)
	require.NoError(t, err)
	assert.Len(t, got.Documents, 5)

	_, err = svc.AddDocument(ctx, "missing", "x", "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateCustomsDetails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	shipment, err := svc.CreateShipment(ctx, acmeShipment())
	require.NoError(t, err)

	found, err := svc.UpdateCustomsDetails(ctx, shipment.ID, CustomsDetails{Broker: " Delta Brokers ", DeclarationNumber: "D-1"})
	require.NoError(t, err)
	require.True(t, found)

	got, err := svc.GetShipment(shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Delta Brokers", got.CustomsBroker)
	assert.Equal(t, "D-1", got.CustomsDeclarationNumber)
}

func TestDelete_LeavesOthersIdentical(t *testing.T) {
	svc, records := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		lead, err := svc.CreateLead(ctx, leadFields(name))
		require.NoError(t, err)
		ids = append(ids, lead.ID)
	}
	var before []model.Lead
	_, err := store.LoadJSON(ctx, records, store.KeyLeads, &before)
	require.NoError(t, err)

	found, err := svc.DeleteLead(ctx, ids[1])
	require.NoError(t, err)
	require.True(t, found)

	var after []model.Lead
	_, err = store.LoadJSON(ctx, records, store.KeyLeads, &after)
	require.NoError(t, err)

	want := append(before[:1:1], before[2:]...)
	if diff := cmp.Diff(want, after); diff != "" {
		t.Errorf("persisted leads mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteShipment_LeavesOthersIdentical(t *testing.T) {
	svc, records := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateShipment(ctx, model.ShipmentFields{TrackingNumber: "AMZ-1", CustomerName: "First"})
	require.NoError(t, err)
	second, err := svc.CreateShipment(ctx, acmeShipment())
	require.NoError(t, err)

	found, err := svc.DeleteShipment(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, found)

	var after []model.Shipment
	_, err = store.LoadJSON(ctx, records, store.KeyShipments, &after)
	require.NoError(t, err)
	require.Len(t, after, 1)
	if diff := cmp.Diff(*second, after[0]); diff != "" {
		t.Errorf("remaining shipment changed (-want +got):\n%s", diff)
	}
}

func TestAddSalesRep(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	name, err := svc.AddSalesRep(ctx, "  nour ")
	require.NoError(t, err)
	assert.Equal(t, "NOUR", name)
	assert.Equal(t, append(append([]string{}, testReps...), "NOUR"), svc.SalesReps())

	before := svc.SalesReps()
	_, err = svc.AddSalesRep(ctx, "Nour")
	assert.ErrorIs(t, err, model.ErrDuplicateSalesRep)
	assert.Equal(t, before, svc.SalesReps())

	_, err = svc.AddSalesRep(ctx, "   ")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRemoveSalesRep_NoCascade(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fields := leadFields("Mohamed")
	fields.SalesName = "AYA"
	lead, err := svc.CreateLead(ctx, fields)
	require.NoError(t, err)

	found, err := svc.RemoveSalesRep(ctx, "aya")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotContains(t, svc.SalesReps(), "AYA")

	got, err := svc.GetLead(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "AYA", got.SalesName)
}

func TestLoad_RehydratesPersistedState(t *testing.T) {
	records := newCountingStore()
	ctx := context.Background()

	first := NewCRMService(records, Options{SalesReps: testReps})
	require.NoError(t, first.Load(ctx))
	lead, err := first.CreateLead(ctx, leadFields("Persisted"))
	require.NoError(t, err)
	_, err = first.AddSalesRep(ctx, "NOUR")
	require.NoError(t, err)
	require.NoError(t, first.SetPreference(ctx, store.KeyActiveTab, "customs"))

	second := NewCRMService(records, Options{SalesReps: []string{"OTHER"}, SeedDemo: true})
	require.NoError(t, second.Load(ctx))

	if diff := cmp.Diff(first.Leads(), second.Leads()); diff != "" {
		t.Errorf("leads differ after reload (-want +got):\n%s", diff)
	}
	assert.Equal(t, lead.ID, second.Leads()[0].ID)
	assert.Contains(t, second.SalesReps(), "NOUR")
	assert.Equal(t, "customs", second.Preferences().ActiveTab)
	// shipments were empty, so only they are seeded
	assert.Len(t, second.Shipments(), 2)
	assert.Len(t, second.Leads(), 1)
}

func TestLoad_SeedsDemoData(t *testing.T) {
	svc := NewCRMService(store.NewMemoryStore(), Options{SalesReps: testReps, SeedDemo: true})
	require.NoError(t, svc.Load(context.Background()))

	assert.Len(t, svc.Leads(), 2)
	require.Len(t, svc.Shipments(), 2)

	shipment, err := svc.FindShipmentByTrackingNumber("AMZ-8854")
	require.NoError(t, err)
	assert.Equal(t, "demo-2", shipment.ID)

	_, err = svc.FindShipmentByTrackingNumber("AMZ-0000")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestLoad_PersistsSeededSalesReps(t *testing.T) {
	records := newCountingStore()
	ctx := context.Background()

	svc := NewCRMService(records, Options{SeedDemo: true})
	require.NoError(t, svc.Load(ctx))
	assert.Equal(t, testReps, svc.SalesReps())
	assert.Equal(t, 1, records.writes(store.KeySalesReps))

	reloaded := NewCRMService(records, Options{})
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, testReps, reloaded.SalesReps())
}

func TestPersistFailure_LeavesStateUnchanged(t *testing.T) {
	svc, records := newTestService(t)
	ctx := context.Background()
	records.putErr = errors.New("disk full")

	_, err := svc.CreateLead(ctx, leadFields("Lost"))
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, svc.Leads())

	_, err = svc.AddSalesRep(ctx, "NOUR")
	assert.Error(t, err)
	assert.Equal(t, testReps, svc.SalesReps())
}

func TestPreferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	prefs := svc.Preferences()
	assert.Equal(t, DefaultActiveTab, prefs.ActiveTab)
	assert.Equal(t, FilterAll, prefs.FilterCargo)
	assert.Equal(t, FilterAll, prefs.FilterCustomsPriority)

	require.NoError(t, svc.SetPreference(ctx, store.KeyFilterCustomsPriority, CustomsPriorityOnly))
	assert.Equal(t, CustomsPriorityOnly, svc.Preferences().FilterCustomsPriority)

	assert.ErrorIs(t, svc.SetPreference(ctx, store.KeyFilterCustomsPriority, "Sometimes"), model.ErrValidation)
	assert.ErrorIs(t, svc.SetPreference(ctx, "theme", "dark"), model.ErrValidation)
}

func TestSetPreferences_RejectsBatchWithUnknownKey(t *testing.T) {
	svc, records := newTestService(t)
	ctx := context.Background()

	err := svc.SetPreferences(ctx, map[string]string{
		store.KeyFilterCargo: "Frozen",
		"theme":              "dark",
	})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, records.writes(store.KeyFilterCargo))
	assert.Equal(t, FilterAll, svc.Preferences().FilterCargo)

	require.NoError(t, svc.SetPreferences(ctx, map[string]string{
		store.KeyFilterCargo: "Frozen",
		store.KeyFilterLine:  "MSC",
	}))
	prefs := svc.Preferences()
	assert.Equal(t, "Frozen", prefs.FilterCargo)
	assert.Equal(t, "MSC", prefs.FilterLine)
}

func TestConcurrentCreates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateLead(ctx, leadFields(fmt.Sprintf("lead %d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	leads := svc.Leads()
	require.Len(t, leads, 25)
	ids := map[string]bool{}
	for _, l := range leads {
		ids[l.ID] = true
	}
	assert.Len(t, ids, 25)
}
