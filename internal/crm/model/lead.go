package model

import (
	"fmt"
	"strings"
)

// LeadStatus represents where a prospect is in the sales funnel.
// Any status may be set from any other.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusQuoted    LeadStatus = "Quoted"
	LeadStatusWon       LeadStatus = "Won"
	LeadStatusLost      LeadStatus = "Lost"
)

// LeadStatuses lists every lead status in funnel order.
var LeadStatuses = []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusQuoted, LeadStatusWon, LeadStatusLost}

func (s LeadStatus) Valid() bool {
	for _, status := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CargoType is the cargo classification of a lead.
type CargoType string

const (
	CargoDry          CargoType = "Dry"
	CargoRefrigerated CargoType = "Refrigerated"
	CargoFrozen       CargoType = "Frozen"
	CargoHazardous    CargoType = "Hazardous"
)

var CargoTypes = []CargoType{CargoDry, CargoRefrigerated, CargoFrozen, CargoHazardous}

func (c CargoType) Valid() bool {
	for _, cargo := range CargoTypes {
		if c == cargo {
			return true
		}
	}
	return false
}

// LeadFields holds the editable attributes of a lead.
type LeadFields struct {
	Name                   string     `json:"name" binding:"required"`
	Phone                  string     `json:"phone" binding:"required"`
	CompanyName            string     `json:"companyName,omitempty"`
	Email                  string     `json:"email,omitempty"`
	Address                string     `json:"address,omitempty"`
	Website                string     `json:"website,omitempty"`
	Facebook               string     `json:"facebook,omitempty"`
	LinkedIn               string     `json:"linkedin,omitempty"`
	CargoType              CargoType  `json:"cargoType"`
	Route                  string     `json:"route"`
	Status                 LeadStatus `json:"status"`
	SalesName              string     `json:"salesName"`
	ShippingLine           string     `json:"shippingLine,omitempty"`
	ShipmentTrackingNumber string     `json:"shipmentTrackingNumber,omitempty"`
	Notes                  string     `json:"notes,omitempty"`
}

// Lead is a sales prospect. ID and Date are assigned at creation and never change.
type Lead struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	LeadFields
}

// Normalize trims free text, uppercases the representative and applies defaults.
func (f *LeadFields) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.SalesName = NormalizeSalesRep(f.SalesName)
	f.ShippingLine, _ = CanonicalShippingLine(f.ShippingLine)
	f.ShipmentTrackingNumber = strings.TrimSpace(f.ShipmentTrackingNumber)
	if f.CargoType == "" {
		f.CargoType = CargoDry
	}
}

// Validate checks required fields and enumerations. Status may be empty.
func (f *LeadFields) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if f.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	if !f.CargoType.Valid() {
		return fmt.Errorf("%w: unsupported cargo type %q", ErrValidation, f.CargoType)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: lead status %q", ErrInvalidStatus, f.Status)
	}
	return nil
}

// NormalizeSalesRep gives the canonical form of a representative name.
func NormalizeSalesRep(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
