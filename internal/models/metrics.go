package models

import (
	"time"
)

// MetricsSnapshot is the derived aggregate view consumed by dashboard displays.
// It is recomputed from the entity collections after every mutation and is
// never a source of truth.
type MetricsSnapshot struct {
	FleetTotal               int     `bson:"fleet_total" json:"fleet_total"`
	OperationalCount         int     `bson:"operational_count" json:"operational_count"`
	MaintenanceCount         int     `bson:"maintenance_count" json:"maintenance_count"`
	StoppedCount             int     `bson:"stopped_count" json:"stopped_count"`
	ActiveOperatorsCount     int     `bson:"active_operators_count" json:"active_operators_count"`
	ActiveOperationsCount    int     `bson:"active_operations_count" json:"active_operations_count"`
	CompletedOperationsCount int     `bson:"completed_operations_count" json:"completed_operations_count"`
	TotalFuelConsumed        float64 `bson:"total_fuel_consumed" json:"total_fuel_consumed"` // in liters
	DailyOperationalCost     float64 `bson:"daily_operational_cost" json:"daily_operational_cost"`
	OverallEfficiency        float64 `bson:"overall_efficiency" json:"overall_efficiency"`   // %
	OverallAvailability      float64 `bson:"overall_availability" json:"overall_availability"` // %
	AverageProductivity      float64 `bson:"average_productivity" json:"average_productivity"` // %
	AverageOperationTime     float64 `bson:"average_operation_time" json:"average_operation_time"` // in minutes
	CriticalAlertsCount      int     `bson:"critical_alerts_count" json:"critical_alerts_count"`
}

// AlertKind categorizes the source of a dashboard alert.
type AlertKind string

const (
	AlertMaintenance AlertKind = "maintenance"
	AlertOperation   AlertKind = "operation"
)

// AlertLevel grades the severity of a dashboard alert.
type AlertLevel string

const (
	AlertLevelMedium   AlertLevel = "medium"
	AlertLevelCritical AlertLevel = "critical"
)

// Alert represents a condition surfaced on the dashboard. Alerts are
// regenerated wholesale from the entity collections; they are never
// accumulated across recomputations.
type Alert struct {
	ID          string     `bson:"id" json:"id"`
	Kind        AlertKind  `bson:"kind" json:"kind"`
	Level       AlertLevel `bson:"level" json:"level"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	OccurredAt  time.Time  `bson:"occurred_at" json:"occurred_at"`
	Responsible string     `bson:"responsible,omitempty" json:"responsible,omitempty"`
}

// PersistedState is the full snapshot exchanged with the persistence boundary.
type PersistedState struct {
	Forklifts         []Forklift         `bson:"forklifts" json:"forklifts"`
	Operators         []Operator         `bson:"operators" json:"operators"`
	Operations        []Operation        `bson:"operations" json:"operations"`
	MaintenanceOrders []MaintenanceOrder `bson:"maintenance_orders" json:"maintenance_orders"`
	FuelSupplies      []FuelSupply       `bson:"fuel_supplies" json:"fuel_supplies"`
	Metrics           MetricsSnapshot    `bson:"metrics" json:"metrics"`
	Alerts            []Alert            `bson:"alerts" json:"alerts"`
	LastUpdate        time.Time          `bson:"last_update" json:"last_update"`
}
