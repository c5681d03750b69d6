package models

import (
	"time"
)

// MaintenanceType represents the category of a maintenance order.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenancePredictive MaintenanceType = "predictive"
)

// IsValidMaintenanceType checks if a maintenance type is valid.
func IsValidMaintenanceType(t MaintenanceType) bool {
	switch t {
	case MaintenancePreventive, MaintenanceCorrective, MaintenancePredictive:
		return true
	default:
		return false
	}
}

// MaintenanceStatus represents the lifecycle state of a maintenance order.
type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "open"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// IsValidMaintenanceStatus checks if a maintenance status is valid.
func IsValidMaintenanceStatus(s MaintenanceStatus) bool {
	switch s {
	case MaintenanceOpen, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return true
	default:
		return false
	}
}

// MaintenanceCosts breaks down the cost of a maintenance order.
type MaintenanceCosts struct {
	Parts      float64 `bson:"parts" json:"parts"`
	Labor      float64 `bson:"labor" json:"labor"`
	ThirdParty float64 `bson:"third_party" json:"third_party"`
	Total      float64 `bson:"total" json:"total"`
}

// PartUsed represents a spare part consumed by a maintenance order.
type PartUsed struct {
	ID        string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	Code      string  `bson:"code" json:"code"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitCost  float64 `bson:"unit_cost" json:"unit_cost"`
	TotalCost float64 `bson:"total_cost" json:"total_cost"`
}

// MaintenanceOrder represents a tracked repair or service request against a forklift.
type MaintenanceOrder struct {
	ID                 string            `bson:"_id" json:"id"`
	ForkliftID         string            `bson:"forklift_id" json:"forklift_id"`
	Type               MaintenanceType   `bson:"type" json:"type"`
	Status             MaintenanceStatus `bson:"status" json:"status"`
	Priority           Priority          `bson:"priority" json:"priority"`
	ProblemDescription string            `bson:"problem_description" json:"problem_description"`
	TechnicianID       string            `bson:"technician_id,omitempty" json:"technician_id,omitempty"`
	OpenedDate         time.Time         `bson:"opened_date" json:"opened_date"`
	StartedDate        *time.Time        `bson:"started_date,omitempty" json:"started_date,omitempty"`
	CompletedDate      *time.Time        `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	Costs              MaintenanceCosts  `bson:"costs" json:"costs"`
	PartsUsed          []PartUsed        `bson:"parts_used" json:"parts_used"`
	Notes              string            `bson:"notes" json:"notes"`
}

// MaintenanceOrderPatch lists the maintenance-order fields callers may change
// through the mutation API. The forklift reference is fixed at creation.
type MaintenanceOrderPatch struct {
	Type               *MaintenanceType   `json:"type,omitempty"`
	Status             *MaintenanceStatus `json:"status,omitempty"`
	Priority           *Priority          `json:"priority,omitempty"`
	ProblemDescription *string            `json:"problem_description,omitempty"`
	TechnicianID       *string            `json:"technician_id,omitempty"`
	StartedDate        *time.Time         `json:"started_date,omitempty"`
	CompletedDate      *time.Time         `json:"completed_date,omitempty"`
	Costs              *MaintenanceCosts  `json:"costs,omitempty"`
	PartsUsed          *[]PartUsed        `json:"parts_used,omitempty"`
	Notes              *string            `json:"notes,omitempty"`
}

// Apply merges the patch into the maintenance order.
func (p MaintenanceOrderPatch) Apply(m *MaintenanceOrder) {
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Priority != nil {
		m.Priority = *p.Priority
	}
	if p.ProblemDescription != nil {
		m.ProblemDescription = *p.ProblemDescription
	}
	if p.TechnicianID != nil {
		m.TechnicianID = *p.TechnicianID
	}
	if p.StartedDate != nil {
		t := *p.StartedDate
		m.StartedDate = &t
	}
	if p.CompletedDate != nil {
		t := *p.CompletedDate
		m.CompletedDate = &t
	}
	if p.Costs != nil {
		m.Costs = *p.Costs
	}
	if p.PartsUsed != nil {
		m.PartsUsed = append([]PartUsed(nil), (*p.PartsUsed)...)
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
}
