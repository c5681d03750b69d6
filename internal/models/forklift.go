package models

import (
	"time"
)

// ForkliftStatus represents the operational state of a forklift.
type ForkliftStatus string

const (
	ForkliftOperational      ForkliftStatus = "operational"
	ForkliftUnderMaintenance ForkliftStatus = "under_maintenance"
	ForkliftStopped          ForkliftStatus = "stopped"
)

// IsValidForkliftStatus checks if a forklift status is valid.
func IsValidForkliftStatus(s ForkliftStatus) bool {
	switch s {
	case ForkliftOperational, ForkliftUnderMaintenance, ForkliftStopped:
		return true
	default:
		return false
	}
}

// ForkliftType represents the power train / chassis category of a forklift.
type ForkliftType string

const (
	ForkliftGas      ForkliftType = "gas"
	ForkliftElectric ForkliftType = "electric"
	ForkliftReach    ForkliftType = "reach"
)

// IsValidForkliftType checks if a forklift type is valid.
func IsValidForkliftType(t ForkliftType) bool {
	switch t {
	case ForkliftGas, ForkliftElectric, ForkliftReach:
		return true
	default:
		return false
	}
}

// Forklift represents a piece of material-handling equipment in the fleet.
type Forklift struct {
	ID                  string         `bson:"_id" json:"id"`
	Model               string         `bson:"model" json:"model"`
	Brand               string         `bson:"brand" json:"brand"`
	Type                ForkliftType   `bson:"type" json:"type"`
	Status              ForkliftStatus `bson:"status" json:"status"`
	Capacity            float64        `bson:"capacity" json:"capacity"` // in kg
	ManufactureYear     int            `bson:"manufacture_year" json:"manufacture_year"`
	AcquisitionDate     time.Time      `bson:"acquisition_date" json:"acquisition_date"`
	SerialNumber        string         `bson:"serial_number" json:"serial_number"`
	HourMeter           float64        `bson:"hour_meter" json:"hour_meter"`
	LastMaintenanceDate time.Time      `bson:"last_maintenance_date" json:"last_maintenance_date"`
	NextMaintenanceDate time.Time      `bson:"next_maintenance_date" json:"next_maintenance_date"`
	CurrentLocation     string         `bson:"current_location" json:"current_location"`
	Sector              string         `bson:"sector" json:"sector"`
	CurrentOperatorID   string         `bson:"current_operator_id,omitempty" json:"current_operator_id,omitempty"`
	HourlyCost          float64        `bson:"hourly_cost" json:"hourly_cost"` // in USD
	Efficiency          float64        `bson:"efficiency" json:"efficiency"`   // %
	Availability        float64        `bson:"availability" json:"availability"` // %
	Notes               string         `bson:"notes" json:"notes"`
}

// ForkliftPatch lists the forklift fields callers may change through the
// mutation API. Status and CurrentOperatorID are absent: both are driven by
// maintenance-order and operation lifecycle rules.
type ForkliftPatch struct {
	Model               *string       `json:"model,omitempty"`
	Brand               *string       `json:"brand,omitempty"`
	Type                *ForkliftType `json:"type,omitempty"`
	Capacity            *float64      `json:"capacity,omitempty"`
	ManufactureYear     *int          `json:"manufacture_year,omitempty"`
	AcquisitionDate     *time.Time    `json:"acquisition_date,omitempty"`
	SerialNumber        *string       `json:"serial_number,omitempty"`
	HourMeter           *float64      `json:"hour_meter,omitempty"`
	LastMaintenanceDate *time.Time    `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time    `json:"next_maintenance_date,omitempty"`
	CurrentLocation     *string       `json:"current_location,omitempty"`
	Sector              *string       `json:"sector,omitempty"`
	HourlyCost          *float64      `json:"hourly_cost,omitempty"`
	Efficiency          *float64      `json:"efficiency,omitempty"`
	Availability        *float64      `json:"availability,omitempty"`
	Notes               *string       `json:"notes,omitempty"`
}

// Apply merges the patch into the forklift.
func (p ForkliftPatch) Apply(f *Forklift) {
	if p.Model != nil {
		f.Model = *p.Model
	}
	if p.Brand != nil {
		f.Brand = *p.Brand
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Capacity != nil {
		f.Capacity = *p.Capacity
	}
	if p.ManufactureYear != nil {
		f.ManufactureYear = *p.ManufactureYear
	}
	if p.AcquisitionDate != nil {
		f.AcquisitionDate = *p.AcquisitionDate
	}
	if p.SerialNumber != nil {
		f.SerialNumber = *p.SerialNumber
	}
	if p.HourMeter != nil {
		f.HourMeter = *p.HourMeter
	}
	if p.LastMaintenanceDate != nil {
		f.LastMaintenanceDate = *p.LastMaintenanceDate
	}
	if p.NextMaintenanceDate != nil {
		f.NextMaintenanceDate = *p.NextMaintenanceDate
	}
	if p.CurrentLocation != nil {
		f.CurrentLocation = *p.CurrentLocation
	}
	if p.Sector != nil {
		f.Sector = *p.Sector
	}
	if p.HourlyCost != nil {
		f.HourlyCost = *p.HourlyCost
	}
	if p.Efficiency != nil {
		f.Efficiency = *p.Efficiency
	}
	if p.Availability != nil {
		f.Availability = *p.Availability
	}
	if p.Notes != nil {
		f.Notes = *p.Notes
	}
}
