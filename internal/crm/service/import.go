package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/amzmarine/crm/internal/activity"
	"github.com/amzmarine/crm/internal/crm/model"
)

// ErrParseFailed wraps assistant failures during smart import.
var ErrParseFailed = errors.New("failed to parse text")

// LowConfidenceThreshold is the shipping line confidence below which an import carries a warning.
const LowConfidenceThreshold = 0.5

// ImportResult is a shipment draft built from free text.
type ImportResult struct {
	Draft         model.Shipment `json:"draft"`
	LowConfidence bool           `json:"lowConfidence"`
	Warning       string         `json:"warning,omitempty"`
	Committed     bool           `json:"committed"`
}

// ImportShipmentDraft asks the assistant to extract shipment fields from text
// and fills a draft with import defaults. A low-confidence shipping line only
// adds a warning; the draft always carries the parsed value. With commit the
// draft is created without requiring an official shipping line.
func (s *CRMService) ImportShipmentDraft(ctx context.Context, text string, commit bool) (*ImportResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: import text is required", model.ErrValidation)
	}

	reps := s.SalesReps()
	parsed, err := s.assistant.ParseFreeText(ctx, text, reps)
	if err != nil {
		slog.WarnContext(ctx, "smart import parse failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	today := model.Today()
	fields := model.ShipmentFields{
		TrackingNumber:        parsed.TrackingNumber,
		CustomerName:          parsed.CustomerName,
		BLNumber:              parsed.BLNumber,
		ShippingLine:          model.OfficialShippingLines[0],
		ShipmentMode:          model.ModeSea,
		ShipmentType:          model.TypeFCL,
		ShipmentDirection:     model.DirectionExport,
		ContainerType:         model.ContainerDry,
		ContainerSize:         model.ContainerSize40,
		Origin:                parsed.Origin,
		Destination:           parsed.Destination,
		CargoDescription:      parsed.CargoDescription,
		BookingDate:           today,
		LoadingDate:           today,
		ShippingDate:          today,
		ETA:                   parsed.ETA,
		CurrentLocation:       "Warehouse",
		WeightKg:              parsed.WeightKg,
		Currency:              model.CurrencyUSD,
		Status:                model.ShipmentStatusPending,
		DetailedCustomsStatus: model.CustomsNotStarted,
		Documents:             model.DefaultDocuments(),
		InlandCosts: model.InlandCosts{
			InlandFreight:    parsed.InlandFreight,
			GensetCost:       parsed.GensetCost,
			OfficialReceipts: parsed.OfficialReceipts,
			OvernightStay:    parsed.OvernightStay,
			OtherExpenses:    parsed.OtherExpenses,
		},
	}
	if fields.TrackingNumber == "" {
		fields.TrackingNumber = fmt.Sprintf("AMZ-%d", 1000+rand.IntN(9000))
	}
	if strings.EqualFold(parsed.Currency, string(model.CurrencyEGP)) {
		fields.Currency = model.CurrencyEGP
	}
	if _, err := time.Parse(model.DateLayout, fields.ETA); err != nil {
		fields.ETA = ""
	}
	if parsed.ShippingLine != nil && parsed.ShippingLine.Value != "" {
		fields.ShippingLine = parsed.ShippingLine.Value
	}

	fields.SalesRep = model.NormalizeSalesRep(parsed.SalesRep)
	if !slices.Contains(reps, fields.SalesRep) {
		fields.SalesRep = DefaultSalesRep
		if len(reps) > 0 {
			fields.SalesRep = reps[0]
		}
	}
	fields.Normalize()

	result := &ImportResult{Draft: model.Shipment{ShipmentFields: fields}}
	if line := parsed.ShippingLine; line != nil && line.Confidence < LowConfidenceThreshold {
		result.LowConfidence = true
		result.Warning = fmt.Sprintf("Warning: unsure of shipping line (%s)", line.OriginalTextDetected)
		s.record(ctx, activity.LevelWarning, "Low confidence shipping line %q for import of %s", line.OriginalTextDetected, fields.TrackingNumber)
	}

	if !commit {
		return result, nil
	}
	created, err := s.createShipment(ctx, fields, false)
	if err != nil {
		return nil, err
	}
	result.Draft = *created
	result.Committed = true
	return result, nil
}
