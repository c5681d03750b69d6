package models

import (
	"time"
)

// FuelSupply represents a refueling record for a forklift.
type FuelSupply struct {
	ID               string    `bson:"_id" json:"id"`
	ForkliftID       string    `bson:"forklift_id" json:"forklift_id"`
	OperatorID       string    `bson:"operator_id" json:"operator_id"`
	Date             time.Time `bson:"date" json:"date"`
	InitialHourMeter float64   `bson:"initial_hour_meter" json:"initial_hour_meter"`
	FinalHourMeter   float64   `bson:"final_hour_meter" json:"final_hour_meter"`
	Liters           float64   `bson:"liters" json:"liters"`
	TotalCost        float64   `bson:"total_cost" json:"total_cost"` // in USD
	PricePerLiter    float64   `bson:"price_per_liter" json:"price_per_liter"`
	Supplier         string    `bson:"supplier" json:"supplier"`
	Location         string    `bson:"location" json:"location"`
	Notes            string    `bson:"notes" json:"notes"`
}

// FuelSupplyPatch lists the fuel-supply fields callers may change through the
// mutation API. Forklift and operator references are fixed at creation.
type FuelSupplyPatch struct {
	Date             *time.Time `json:"date,omitempty"`
	InitialHourMeter *float64   `json:"initial_hour_meter,omitempty"`
	FinalHourMeter   *float64   `json:"final_hour_meter,omitempty"`
	Liters           *float64   `json:"liters,omitempty"`
	TotalCost        *float64   `json:"total_cost,omitempty"`
	PricePerLiter    *float64   `json:"price_per_liter,omitempty"`
	Supplier         *string    `json:"supplier,omitempty"`
	Location         *string    `json:"location,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

// Apply merges the patch into the fuel supply record.
func (p FuelSupplyPatch) Apply(f *FuelSupply) {
	if p.Date != nil {
		f.Date = *p.Date
	}
	if p.InitialHourMeter != nil {
		f.InitialHourMeter = *p.InitialHourMeter
	}
	if p.FinalHourMeter != nil {
		f.FinalHourMeter = *p.FinalHourMeter
	}
	if p.Liters != nil {
		f.Liters = *p.Liters
	}
	if p.TotalCost != nil {
		f.TotalCost = *p.TotalCost
	}
	if p.PricePerLiter != nil {
		f.PricePerLiter = *p.PricePerLiter
	}
	if p.Supplier != nil {
		f.Supplier = *p.Supplier
	}
	if p.Location != nil {
		f.Location = *p.Location
	}
	if p.Notes != nil {
		f.Notes = *p.Notes
	}
}
