package models

import (
	"time"
)

// OperationType represents the kind of task performed during an operation.
type OperationType string

const (
	OperationLoading   OperationType = "loading"
	OperationUnloading OperationType = "unloading"
	OperationMovement  OperationType = "movement"
	OperationStocking  OperationType = "stocking"
	OperationPicking   OperationType = "picking"
)

// IsValidOperationType checks if an operation type is valid.
func IsValidOperationType(t OperationType) bool {
	switch t {
	case OperationLoading, OperationUnloading, OperationMovement, OperationStocking, OperationPicking:
		return true
	default:
		return false
	}
}

// OperationStatus represents the lifecycle state of an operation.
type OperationStatus string

const (
	OperationInProgress OperationStatus = "in_progress"
	OperationCompleted  OperationStatus = "completed"
)

// IsValidOperationStatus checks if an operation status is valid.
func IsValidOperationStatus(s OperationStatus) bool {
	switch s {
	case OperationInProgress, OperationCompleted:
		return true
	default:
		return false
	}
}

// Priority represents the urgency assigned to operations and maintenance orders.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValidPriority checks if a priority is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Operation represents a time-bounded task performed by an operator using a forklift.
type Operation struct {
	ID                string          `bson:"_id" json:"id"`
	ForkliftID        string          `bson:"forklift_id" json:"forklift_id"`
	OperatorID        string          `bson:"operator_id" json:"operator_id"`
	Type              OperationType   `bson:"type" json:"type"`
	Status            OperationStatus `bson:"status" json:"status"`
	Priority          Priority        `bson:"priority" json:"priority"`
	Sector            string          `bson:"sector" json:"sector"`
	Location          string          `bson:"location" json:"location"`
	StartTime         time.Time       `bson:"start_time" json:"start_time"`
	EndTime           *time.Time      `bson:"end_time,omitempty" json:"end_time,omitempty"`
	EstimatedDuration int             `bson:"estimated_duration" json:"estimated_duration"` // in minutes
	ActualDuration    *int            `bson:"actual_duration,omitempty" json:"actual_duration,omitempty"`
	FuelConsumption   *float64        `bson:"fuel_consumption,omitempty" json:"fuel_consumption,omitempty"` // in liters
	Productivity      *float64        `bson:"productivity,omitempty" json:"productivity,omitempty"`         // %
	Notes             string          `bson:"notes" json:"notes"`
}

// OperationPatch lists the operation fields callers may change through the
// mutation API. Forklift and operator references are fixed at creation;
// ActualDuration is derived on completion.
type OperationPatch struct {
	Type              *OperationType   `json:"type,omitempty"`
	Status            *OperationStatus `json:"status,omitempty"`
	Priority          *Priority        `json:"priority,omitempty"`
	Sector            *string          `json:"sector,omitempty"`
	Location          *string          `json:"location,omitempty"`
	EndTime           *time.Time       `json:"end_time,omitempty"`
	EstimatedDuration *int             `json:"estimated_duration,omitempty"`
	FuelConsumption   *float64         `json:"fuel_consumption,omitempty"`
	Productivity      *float64         `json:"productivity,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
}

// Apply merges the patch into the operation.
func (p OperationPatch) Apply(o *Operation) {
	if p.Type != nil {
		o.Type = *p.Type
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Priority != nil {
		o.Priority = *p.Priority
	}
	if p.Sector != nil {
		o.Sector = *p.Sector
	}
	if p.Location != nil {
		o.Location = *p.Location
	}
	if p.EndTime != nil {
		t := *p.EndTime
		o.EndTime = &t
	}
	if p.EstimatedDuration != nil {
		o.EstimatedDuration = *p.EstimatedDuration
	}
	if p.FuelConsumption != nil {
		v := *p.FuelConsumption
		o.FuelConsumption = &v
	}
	if p.Productivity != nil {
		v := *p.Productivity
		o.Productivity = &v
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
}
