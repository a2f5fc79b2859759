// Package seed provides the demo records loaded into empty collections.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/amzmarine/crm/internal/crm/model"
)

//go:embed demo.yaml
var demoYAML []byte

// Fixture is the decoded demo data set.
type Fixture struct {
	SalesReps []string
	Leads     []model.Lead
	Shipments []model.Shipment
}

type fixtureFile struct {
	SalesReps []string       `yaml:"salesReps"`
	Leads     []leadSeed     `yaml:"leads"`
	Shipments []shipmentSeed `yaml:"shipments"`
}

type leadSeed struct {
	ID                     string `yaml:"id"`
	Name                   string `yaml:"name"`
	Phone                  string `yaml:"phone"`
	CompanyName            string `yaml:"companyName"`
	CargoType              string `yaml:"cargoType"`
	Route                  string `yaml:"route"`
	Status                 string `yaml:"status"`
	SalesName              string `yaml:"salesName"`
	ShipmentTrackingNumber string `yaml:"shipmentTrackingNumber"`
}

type shipmentSeed struct {
	ID                    string  `yaml:"id"`
	TrackingNumber        string  `yaml:"trackingNumber"`
	CustomerName          string  `yaml:"customerName"`
	BookingNumber         string  `yaml:"bookingNumber"`
	BLNumber              string  `yaml:"blNumber"`
	ShippingLine          string  `yaml:"shippingLine"`
	ShipmentMode          string  `yaml:"shipmentMode"`
	ShipmentType          string  `yaml:"shipmentType"`
	ShipmentDirection     string  `yaml:"shipmentDirection"`
	ContainerType         string  `yaml:"containerType"`
	ContainerSize         string  `yaml:"containerSize"`
	Origin                string  `yaml:"origin"`
	Destination           string  `yaml:"destination"`
	POL                   string  `yaml:"pol"`
	POD                   string  `yaml:"pod"`
	CargoDescription      string  `yaml:"cargoDescription"`
	ETA                   string  `yaml:"eta"`
	CurrentLocation       string  `yaml:"currentLocation"`
	Status                string  `yaml:"status"`
	DetailedCustomsStatus string  `yaml:"detailedCustomsStatus"`
	SalesRep              string  `yaml:"salesRep"`
	Currency              string  `yaml:"currency"`
	InlandFreight         float64 `yaml:"inlandFreight"`
	GensetCost            float64 `yaml:"gensetCost"`
	OfficialReceipts      float64 `yaml:"officialReceipts"`
	OvernightStay         float64 `yaml:"overnightStay"`
	OtherExpenses         float64 `yaml:"otherExpenses"`
	WeightKg              float64 `yaml:"weightKg"`
	VerifiedDocuments     int     `yaml:"verifiedDocuments"`
}

// Demo decodes the embedded fixture. Creation, booking, loading and shipping
// dates are stamped with today.
func Demo(today string) (*Fixture, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(demoYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to decode demo fixture: %w", err)
	}

	fixture := &Fixture{SalesReps: file.SalesReps}
	for _, l := range file.Leads {
		fixture.Leads = append(fixture.Leads, model.Lead{
			ID:   l.ID,
			Date: today,
			LeadFields: model.LeadFields{
				Name:                   l.Name,
				Phone:                  l.Phone,
				CompanyName:            l.CompanyName,
				CargoType:              model.CargoType(l.CargoType),
				Route:                  l.Route,
				Status:                 model.LeadStatus(l.Status),
				SalesName:              l.SalesName,
				ShipmentTrackingNumber: l.ShipmentTrackingNumber,
			},
		})
	}

	for _, s := range file.Shipments {
		fixture.Shipments = append(fixture.Shipments, model.Shipment{
			ID: s.ID,
			ShipmentFields: model.ShipmentFields{
				TrackingNumber:        s.TrackingNumber,
				CustomerName:          s.CustomerName,
				BookingDate:           today,
				BookingNumber:         s.BookingNumber,
				BLNumber:              s.BLNumber,
				ShippingLine:          s.ShippingLine,
				ShipmentMode:          model.ShipmentMode(s.ShipmentMode),
				ShipmentType:          model.ShipmentType(s.ShipmentType),
				ShipmentDirection:     model.Direction(s.ShipmentDirection),
				ContainerType:         model.ContainerType(s.ContainerType),
				ContainerSize:         model.ContainerSize(s.ContainerSize),
				Origin:                s.Origin,
				Destination:           s.Destination,
				POL:                   s.POL,
				POD:                   s.POD,
				CargoDescription:      s.CargoDescription,
				LoadingDate:           today,
				ShippingDate:          today,
				ETA:                   s.ETA,
				CurrentLocation:       s.CurrentLocation,
				WeightKg:              s.WeightKg,
				SalesRep:              s.SalesRep,
				Currency:              model.Currency(s.Currency),
				Status:                model.ShipmentStatus(s.Status),
				DetailedCustomsStatus: model.CustomsStatus(s.DetailedCustomsStatus),
				Documents:             model.SeededDocuments(s.VerifiedDocuments, today),
				InlandCosts: model.InlandCosts{
					InlandFreight:    s.InlandFreight,
					GensetCost:       s.GensetCost,
					OfficialReceipts: s.OfficialReceipts,
					OvernightStay:    s.OvernightStay,
					OtherExpenses:    s.OtherExpenses,
				},
			},
		})
	}
	return fixture, nil
}
