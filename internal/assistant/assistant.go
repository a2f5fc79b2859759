// Package assistant is the generative-AI collaborator of the CRM. The
// lifecycle core never depends on it; every failure is returned to the caller.
package assistant

import (
	"context"
	"errors"

	"github.com/amzmarine/crm/internal/crm/model"
)

// ErrUnavailable is returned when no assistant backend is configured.
var ErrUnavailable = errors.New("assistant unavailable")

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role Role   `json:"role" binding:"required,oneof=user model"`
	Text string `json:"text" binding:"required"`
}

// ImageSize is the requested output resolution of a generated image.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

// ScoredValue is an extracted value with the model's confidence in it.
type ScoredValue struct {
	Value                string  `json:"value"`
	Confidence           float64 `json:"confidence"`
	OriginalTextDetected string  `json:"originalTextDetected"`
}

// ParsedShipment holds the shipment fields extracted from free text.
// Absent fields are zero.
type ParsedShipment struct {
	CustomerName     string       `json:"customerName,omitempty"`
	TrackingNumber   string       `json:"trackingNumber,omitempty"`
	BLNumber         string       `json:"blNumber,omitempty"`
	ShippingLine     *ScoredValue `json:"shippingLine,omitempty"`
	Origin           string       `json:"origin,omitempty"`
	Destination      string       `json:"destination,omitempty"`
	CargoDescription string       `json:"cargoDescription,omitempty"`
	SalesRep         string       `json:"salesRep,omitempty"`
	InlandFreight    float64      `json:"inlandFreight,omitempty"`
	GensetCost       float64      `json:"gensetCost,omitempty"`
	OfficialReceipts float64      `json:"officialReceipts,omitempty"`
	OvernightStay    float64      `json:"overnightStay,omitempty"`
	OtherExpenses    float64      `json:"otherExpenses,omitempty"`
	Currency         string       `json:"currency,omitempty"`
	ETA              string       `json:"eta,omitempty"`
	WeightKg         float64      `json:"weightKg,omitempty"`
}

// Assistant answers questions about the CRM state and extracts structured data.
type Assistant interface {
	// Chat answers message given the prior conversation and a shipment snapshot.
	Chat(ctx context.Context, message string, history []Message, shipments []model.Shipment) (string, error)
	// Summarize produces a short operational brief.
	Summarize(ctx context.Context, leads []model.Lead, shipments []model.Shipment) (string, error)
	// ParseFreeText extracts shipment fields from pasted text such as an email or invoice.
	ParseFreeText(ctx context.Context, text string, salesReps []string) (*ParsedShipment, error)
	// Query answers a question about the full CRM state.
	Query(ctx context.Context, question string, leads []model.Lead, shipments []model.Shipment) (string, error)
	// GenerateImage returns a data URI of an image rendered from prompt.
	GenerateImage(ctx context.Context, prompt string, size ImageSize) (string, error)
}

// Unavailable is the Assistant used when no API key is configured.
type Unavailable struct{}

func (Unavailable) Chat(context.Context, string, []Message, []model.Shipment) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Summarize(context.Context, []model.Lead, []model.Shipment) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) ParseFreeText(context.Context, string, []string) (*ParsedShipment, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Query(context.Context, string, []model.Lead, []model.Shipment) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) GenerateImage(context.Context, string, ImageSize) (string, error) {
	return "", ErrUnavailable
}
