package model

import (
	"fmt"
	"strings"
	"time"
)

// ShipmentStatus is the main lifecycle status. The order of ShipmentStatuses
// drives the timeline; any status may be set from any other.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "Pending"
	ShipmentStatusInTransit ShipmentStatus = "In Transit"
	ShipmentStatusAtSea     ShipmentStatus = "At Sea"
	ShipmentStatusCustoms   ShipmentStatus = "Customs"
	ShipmentStatusDelivered ShipmentStatus = "Delivered"
)

var ShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusInTransit,
	ShipmentStatusAtSea,
	ShipmentStatusCustoms,
	ShipmentStatusDelivered,
}

// Index returns the position of s in the timeline, or -1 when unknown.
func (s ShipmentStatus) Index() int {
	for i, status := range ShipmentStatuses {
		if s == status {
			return i
		}
	}
	return -1
}

func (s ShipmentStatus) Valid() bool { return s.Index() >= 0 }

// CustomsStatus tracks customs brokerage progress independently of the main status.
type CustomsStatus string

const (
	CustomsNotStarted       CustomsStatus = "Not Started"
	CustomsDocsReceived     CustomsStatus = "Docs Received"
	CustomsDeclarationFiled CustomsStatus = "Declaration Filed"
	CustomsInspection       CustomsStatus = "Inspection"
	CustomsDutyPaid         CustomsStatus = "Duty Paid"
	CustomsReleased         CustomsStatus = "Released"
)

var CustomsStatuses = []CustomsStatus{
	CustomsNotStarted,
	CustomsDocsReceived,
	CustomsDeclarationFiled,
	CustomsInspection,
	CustomsDutyPaid,
	CustomsReleased,
}

func (s CustomsStatus) Valid() bool {
	for _, status := range CustomsStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type ShipmentMode string

const (
	ModeSea  ShipmentMode = "Sea"
	ModeLand ShipmentMode = "Land"
	ModeAir  ShipmentMode = "Air"
)

type ShipmentType string

const (
	TypeFCL ShipmentType = "FCL"
	TypeLCL ShipmentType = "LCL"
)

type Direction string

const (
	DirectionExport Direction = "Export"
	DirectionImport Direction = "Import"
)

type ContainerType string

const (
	ContainerDry      ContainerType = "Dry"
	ContainerReefer   ContainerType = "Reefer"
	ContainerOpenTop  ContainerType = "Open Top"
	ContainerFlatRack ContainerType = "Flat Rack"
	ContainerHighCube ContainerType = "High Cube"
)

type ContainerSize string

const (
	ContainerSize20 ContainerSize = "20’"
	ContainerSize40 ContainerSize = "40’"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEGP Currency = "EGP"
)

// DateLayout is the calendar date format used for every date field.
const DateLayout = "2006-01-02"

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// InlandCosts are the itemized local charges billed on top of ocean freight.
type InlandCosts struct {
	InlandFreight      float64 `json:"inlandFreight"`
	GensetCost         float64 `json:"gensetCost"`
	OfficialReceipts   float64 `json:"officialReceipts"`
	OvernightStay      float64 `json:"overnightStay"`
	OtherExpenses      float64 `json:"otherExpenses"`
	OtherExpensesNotes string  `json:"otherExpensesNotes,omitempty"`
}

// TotalInlandCost is the sum of the five itemized cost fields.
func (c InlandCosts) TotalInlandCost() float64 {
	return c.InlandFreight + c.GensetCost + c.OfficialReceipts + c.OvernightStay + c.OtherExpenses
}

// ShipmentFields holds the editable attributes of a shipment.
type ShipmentFields struct {
	TrackingNumber           string         `json:"trackingNumber" binding:"required"`
	CustomerName             string         `json:"customerName" binding:"required"`
	BookingDate              string         `json:"bookingDate,omitempty"`
	BookingNumber            string         `json:"bookingNumber,omitempty"`
	BLNumber                 string         `json:"blNumber,omitempty"`
	ShippingLine             string         `json:"shippingLine"`
	ShipmentMode             ShipmentMode   `json:"shipmentMode"`
	ShipmentType             ShipmentType   `json:"shipmentType"`
	ShipmentDirection        Direction      `json:"shipmentDirection"`
	ContainerType            ContainerType  `json:"containerType"`
	ContainerSize            ContainerSize  `json:"containerSize"`
	PlaceOfLoading           string         `json:"placeOfLoading,omitempty"`
	POL                      string         `json:"pol,omitempty"`
	POD                      string         `json:"pod,omitempty"`
	Origin                   string         `json:"origin"`
	Destination              string         `json:"destination"`
	CargoDescription         string         `json:"cargoDescription,omitempty"`
	LoadingDate              string         `json:"loadingDate,omitempty"`
	ShippingDate             string         `json:"shippingDate,omitempty"`
	ETA                      string         `json:"eta,omitempty"`
	CurrentLocation          string         `json:"currentLocation,omitempty"`
	WeightKg                 float64        `json:"weightKg"`
	SalesRep                 string         `json:"salesRep"`
	Currency                 Currency       `json:"currency"`
	Status                   ShipmentStatus `json:"status"`
	DetailedCustomsStatus    CustomsStatus  `json:"detailedCustomsStatus"`
	CustomsBroker            string         `json:"customsBroker,omitempty"`
	CustomsDeclarationNumber string         `json:"customsDeclarationNumber,omitempty"`
	CustomsNotes             string         `json:"customsNotes,omitempty"`
	Documents                []Document     `json:"documents"`
	InlandCosts
}

// Shipment is a tracked freight movement. ID never changes after creation.
type Shipment struct {
	ID string `json:"id"`
	ShipmentFields
}

// Normalize trims identifiers, canonicalizes the shipping line when it is
// official and fills defaults for the empty enumerations.
func (f *ShipmentFields) Normalize() {
	f.TrackingNumber = strings.TrimSpace(f.TrackingNumber)
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.ShippingLine, _ = CanonicalShippingLine(f.ShippingLine)
	f.SalesRep = NormalizeSalesRep(f.SalesRep)
	if f.ShipmentMode == "" {
		f.ShipmentMode = ModeSea
	}
	if f.ShipmentType == "" {
		f.ShipmentType = TypeFCL
	}
	if f.ShipmentDirection == "" {
		f.ShipmentDirection = DirectionExport
	}
	if f.ContainerType == "" {
		f.ContainerType = ContainerDry
	}
	if f.ContainerSize == "" {
		f.ContainerSize = ContainerSize40
	}
	if f.Currency == "" {
		f.Currency = CurrencyUSD
	}
}

// Validate checks required fields, enumerations and cost items. With strictLine
// a non-empty shipping line must come from OfficialShippingLines; otherwise
// free text is tolerated. Status fields may be empty.
func (f *ShipmentFields) Validate(strictLine bool) error {
	if f.TrackingNumber == "" {
		return fmt.Errorf("%w: trackingNumber is required", ErrValidation)
	}
	if f.CustomerName == "" {
		return fmt.Errorf("%w: customerName is required", ErrValidation)
	}
	if strictLine && f.ShippingLine != "" {
		if _, ok := CanonicalShippingLine(f.ShippingLine); !ok {
			return fmt.Errorf("%w: shipping line %q is not an official line", ErrValidation, f.ShippingLine)
		}
	}

	switch f.ShipmentMode {
	case ModeSea, ModeLand, ModeAir:
	default:
		return fmt.Errorf("%w: unsupported shipment mode %q", ErrValidation, f.ShipmentMode)
	}
	switch f.ShipmentType {
	case TypeFCL, TypeLCL:
	default:
		return fmt.Errorf("%w: unsupported shipment type %q", ErrValidation, f.ShipmentType)
	}
	switch f.ShipmentDirection {
	case DirectionExport, DirectionImport:
	default:
		return fmt.Errorf("%w: unsupported direction %q", ErrValidation, f.ShipmentDirection)
	}
	switch f.ContainerType {
	case ContainerDry, ContainerReefer, ContainerOpenTop, ContainerFlatRack, ContainerHighCube:
	default:
		return fmt.Errorf("%w: unsupported container type %q", ErrValidation, f.ContainerType)
	}
	switch f.ContainerSize {
	case ContainerSize20, ContainerSize40:
	default:
		return fmt.Errorf("%w: unsupported container size %q", ErrValidation, f.ContainerSize)
	}
	switch f.Currency {
	case CurrencyUSD, CurrencyEGP:
	default:
		return fmt.Errorf("%w: unsupported currency %q", ErrValidation, f.Currency)
	}

	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: shipment status %q", ErrInvalidStatus, f.Status)
	}
	if f.DetailedCustomsStatus != "" && !f.DetailedCustomsStatus.Valid() {
		return fmt.Errorf("%w: customs status %q", ErrInvalidStatus, f.DetailedCustomsStatus)
	}

	costs := map[string]float64{
		"inlandFreight":    f.InlandFreight,
		"gensetCost":       f.GensetCost,
		"officialReceipts": f.OfficialReceipts,
		"overnightStay":    f.OvernightStay,
		"otherExpenses":    f.OtherExpenses,
		"weightKg":         f.WeightKg,
	}
	for field, value := range costs {
		if value < 0 {
			return fmt.Errorf("%w: %s cannot be negative", ErrValidation, field)
		}
	}

	dates := map[string]string{
		"bookingDate":  f.BookingDate,
		"loadingDate":  f.LoadingDate,
		"shippingDate": f.ShippingDate,
		"eta":          f.ETA,
	}
	for field, value := range dates {
		if value == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, value); err != nil {
			return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, field)
		}
	}

	ids := make(map[string]struct{}, len(f.Documents))
	for _, doc := range f.Documents {
		if err := doc.Validate(); err != nil {
			return err
		}
		if _, dup := ids[doc.ID]; dup {
			return fmt.Errorf("%w: duplicate document id %q", ErrValidation, doc.ID)
		}
		ids[doc.ID] = struct{}{}
	}
	return nil
}

// Document returns a pointer to the document with the given id.
func (s *Shipment) Document(docID string) (*Document, bool) {
	for i := range s.Documents {
		if s.Documents[i].ID == docID {
			return &s.Documents[i], true
		}
	}
	return nil, false
}

// Clone returns a copy that shares no document storage with s.
func (s Shipment) Clone() Shipment {
	out := s
	if s.Documents != nil {
		out.Documents = make([]Document, len(s.Documents))
		for i, doc := range s.Documents {
			out.Documents[i] = doc.Clone()
		}
	}
	return out
}
