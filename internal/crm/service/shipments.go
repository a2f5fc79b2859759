package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/amzmarine/crm/internal/activity"
	"github.com/amzmarine/crm/internal/crm/model"
)

// CustomsDetails are the broker-facing customs fields of a shipment.
type CustomsDetails struct {
	Broker            string `json:"customsBroker"`
	DeclarationNumber string `json:"customsDeclarationNumber"`
	Notes             string `json:"customsNotes"`
}

// Shipments returns a deep copy of the shipment collection in insertion order.
func (s *CRMService) Shipments() []model.Shipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneShipments(s.shipments)
}

func cloneShipments(shipments []model.Shipment) []model.Shipment {
	out := make([]model.Shipment, len(shipments))
	for i, shipment := range shipments {
		out[i] = shipment.Clone()
	}
	return out
}

// GetShipment returns the shipment with the given id or model.ErrNotFound.
func (s *CRMService) GetShipment(id string) (*model.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.shipmentIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("shipment %s: %w", id, model.ErrNotFound)
	}
	shipment := s.shipments[i].Clone()
	return &shipment, nil
}

// FindShipmentByTrackingNumber matches the tracking number exactly.
func (s *CRMService) FindShipmentByTrackingNumber(trackingNumber string) (*model.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trackingNumber = strings.TrimSpace(trackingNumber)
	for _, shipment := range s.shipments {
		if shipment.TrackingNumber == trackingNumber {
			found := shipment.Clone()
			return &found, nil
		}
	}
	return nil, fmt.Errorf("vessel matching %s not found in live manifest: %w", trackingNumber, model.ErrNotFound)
}

func (s *CRMService) shipmentIndex(id string) int {
	return slices.IndexFunc(s.shipments, func(sh model.Shipment) bool { return sh.ID == id })
}

// CreateShipment appends a new shipment with status Pending and customs status
// Not Started. The shipping line must be an official one. Without supplied
// documents the four core documents are attached, all Missing.
func (s *CRMService) CreateShipment(ctx context.Context, fields model.ShipmentFields) (*model.Shipment, error) {
	return s.createShipment(ctx, fields, true)
}

func (s *CRMService) createShipment(ctx context.Context, fields model.ShipmentFields, strictLine bool) (*model.Shipment, error) {
	fields.Normalize()
	fields.Status = model.ShipmentStatusPending
	fields.DetailedCustomsStatus = model.CustomsNotStarted
	if len(fields.Documents) == 0 {
		fields.Documents = model.DefaultDocuments()
	}
	if err := fields.Validate(strictLine); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.resolveSalesRep(fields.SalesRep, "")
	if err != nil {
		return nil, err
	}
	fields.SalesRep = rep

	shipment := model.Shipment{
		ID:             s.newID(func(id string) bool { return s.shipmentIndex(id) >= 0 }),
		ShipmentFields: fields,
	}
	if err := s.saveShipments(ctx, append(cloneShipments(s.shipments), shipment)); err != nil {
		return nil, err
	}

	s.record(ctx, activity.LevelSuccess, "Shipment %s dispatched for %s", shipment.TrackingNumber, shipment.CustomerName)
	created := shipment.Clone()
	return &created, nil
}

// UpdateShipment replaces every editable field of the shipment, keeping its
// id. Empty status fields keep their current values and a nil document list
// keeps the current documents. A changed shipping line must be official. It
// reports false without writing when no shipment has the id.
func (s *CRMService) UpdateShipment(ctx context.Context, id string, fields model.ShipmentFields) (bool, error) {
	fields.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.shipmentIndex(id)
	if i < 0 {
		return false, nil
	}
	current := s.shipments[i]

	if fields.Status == "" {
		fields.Status = current.Status
	}
	if fields.DetailedCustomsStatus == "" {
		fields.DetailedCustomsStatus = current.DetailedCustomsStatus
	}
	if fields.Documents == nil {
		fields.Documents = current.Clone().Documents
	}
	if err := fields.Validate(fields.ShippingLine != current.ShippingLine); err != nil {
		return false, err
	}
	rep, err := s.resolveSalesRep(fields.SalesRep, current.SalesRep)
	if err != nil {
		return false, err
	}
	fields.SalesRep = rep

	next := cloneShipments(s.shipments)
	next[i] = model.Shipment{ID: current.ID, ShipmentFields: fields}
	if err := s.saveShipments(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// mutateShipment applies fn to a copy of the shipment and persists the result.
// It reports false without writing when no shipment has the id or fn reports false.
func (s *CRMService) mutateShipment(ctx context.Context, id string, fn func(*model.Shipment) (bool, error)) (bool, error) {
	i := s.shipmentIndex(id)
	if i < 0 {
		return false, nil
	}
	next := cloneShipments(s.shipments)
	ok, err := fn(&next[i])
	if err != nil || !ok {
		return false, err
	}
	if err := s.saveShipments(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// SetShipmentStatus assigns the main status without transition rules.
func (s *CRMService) SetShipmentStatus(ctx context.Context, id string, status model.ShipmentStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: shipment status %q", model.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.mutateShipment(ctx, id, func(sh *model.Shipment) (bool, error) {
		sh.Status = status
		return true, nil
	})
	if ok {
		s.record(ctx, activity.LevelSuccess, "Shipment %s marked as %s", id, status)
	}
	return ok, err
}

// SetDetailedCustomsStatus assigns the customs sub-status without transition rules.
func (s *CRMService) SetDetailedCustomsStatus(ctx context.Context, id string, status model.CustomsStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: customs status %q", model.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.mutateShipment(ctx, id, func(sh *model.Shipment) (bool, error) {
		sh.DetailedCustomsStatus = status
		return true, nil
	})
	if ok {
		s.record(ctx, activity.LevelInfo, "Shipment %s customs stage: %s", id, status)
	}
	return ok, err
}

// UpdateCustomsDetails replaces the broker, declaration number and notes.
func (s *CRMService) UpdateCustomsDetails(ctx context.Context, id string, details CustomsDetails) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateShipment(ctx, id, func(sh *model.Shipment) (bool, error) {
		sh.CustomsBroker = strings.TrimSpace(details.Broker)
		sh.CustomsDeclarationNumber = strings.TrimSpace(details.DeclarationNumber)
		sh.CustomsNotes = details.Notes
		return true, nil
	})
}

// DeleteShipment removes exactly one shipment. Leads linking to it keep their tracking number.
func (s *CRMService) DeleteShipment(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.shipmentIndex(id)
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(cloneShipments(s.shipments), i, i+1)
	if err := s.saveShipments(ctx, next); err != nil {
		return false, err
	}

	s.record(ctx, activity.LevelWarning, "Shipment %s removed", id)
	return true, nil
}

// ToggleDocumentStatus cycles a document Missing, Pending, Verified, Missing.
// It reports false without writing when the shipment or document is unknown.
func (s *CRMService) ToggleDocumentStatus(ctx context.Context, shipmentID, docID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateShipment(ctx, shipmentID, func(sh *model.Shipment) (bool, error) {
		doc, ok := sh.Document(docID)
		if !ok {
			return false, nil
		}
		doc.Status = doc.Status.Next()
		return true, nil
	})
}

// MarkDocumentUploaded attaches an uploaded file and sets the document to
// Pending with today's upload date, whatever its previous status.
func (s *CRMService) MarkDocumentUploaded(ctx context.Context, shipmentID, docID string, attachment model.Attachment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.mutateShipment(ctx, shipmentID, func(sh *model.Shipment) (bool, error) {
		doc, ok := sh.Document(docID)
		if !ok {
			return false, nil
		}
		doc.Status = model.DocumentPending
		doc.UploadDate = model.Today()
		doc.Attachment = &attachment
		doc.ReviewerNotes = ""
		return true, nil
	})
	if ok {
		s.record(ctx, activity.LevelInfo, "Document %s of shipment %s uploaded for review", docID, shipmentID)
	}
	return ok, err
}

// VerifyDocument moves a Pending document to Verified and stores the reviewer
// notes. Any other starting status fails with model.ErrInvalidDocumentTransition.
func (s *CRMService) VerifyDocument(ctx context.Context, shipmentID, docID, notes string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.mutateShipment(ctx, shipmentID, func(sh *model.Shipment) (bool, error) {
		doc, ok := sh.Document(docID)
		if !ok {
			return false, nil
		}
		if doc.Status != model.DocumentPending {
			return false, fmt.Errorf("%w: document %s is %s, expected %s",
				model.ErrInvalidDocumentTransition, docID, doc.Status, model.DocumentPending)
		}
		doc.Status = model.DocumentVerified
		doc.ReviewerNotes = strings.TrimSpace(notes)
		return true, nil
	})
	if ok {
		s.record(ctx, activity.LevelSuccess, "Document %s of shipment %s verified", docID, shipmentID)
	}
	return ok, err
}

// AddDocument appends a Missing document to the checklist of a shipment.
func (s *CRMService) AddDocument(ctx context.Context, shipmentID, name, docType string) (*model.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", model.ErrValidation)
	}
	if docType = strings.TrimSpace(docType); docType == "" {
		docType = "Additional"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := model.Document{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       docType,
		Status:     model.DocumentMissing,
		UploadDate: model.NoUploadDate,
	}
	ok, err := s.mutateShipment(ctx, shipmentID, func(sh *model.Shipment) (bool, error) {
		sh.Documents = append(sh.Documents, doc)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("shipment %s: %w", shipmentID, model.ErrNotFound)
	}
	return &doc, nil
}
