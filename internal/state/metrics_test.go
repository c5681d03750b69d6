package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/frotadev/fleet-manager/internal/models"
)

func metricsFixture() Collections {
	duration1, duration2 := 42, 58
	productivity1, productivity2 := 88.0, 92.0
	end := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	return Collections{
		Forklifts: []models.Forklift{
			{ID: "E-001", Status: models.ForkliftOperational, Efficiency: 90, Availability: 96},
			{ID: "E-002", Status: models.ForkliftUnderMaintenance, Efficiency: 70, Availability: 60},
			{ID: "E-003", Status: models.ForkliftStopped, Efficiency: 80, Availability: 90},
		},
		Operators: []models.Operator{
			{ID: "OP-001", Status: models.OperatorActive},
			{ID: "OP-002", Status: models.OperatorVacation},
			{ID: "OP-003", Status: models.OperatorActive},
		},
		Operations: []models.Operation{
			{ID: "OPR-001", Status: models.OperationInProgress},
			{ID: "OPR-002", Status: models.OperationCompleted, EndTime: &end, ActualDuration: &duration1, Productivity: &productivity1},
			{ID: "OPR-003", Status: models.OperationCompleted, EndTime: &end, ActualDuration: &duration2, Productivity: &productivity2},
			{ID: "OPR-004", Status: models.OperationCompleted, EndTime: &end},
		},
		MaintenanceOrders: []models.MaintenanceOrder{
			{ID: "MO-001", Status: models.MaintenanceOpen, Priority: models.PriorityCritical, Costs: models.MaintenanceCosts{Total: 150}},
			{ID: "MO-002", Status: models.MaintenanceCompleted, Priority: models.PriorityCritical, Costs: models.MaintenanceCosts{Total: 90}},
			{ID: "MO-003", Status: models.MaintenanceInProgress, Priority: models.PriorityLow, Costs: models.MaintenanceCosts{Total: 10}},
		},
		FuelSupplies: []models.FuelSupply{
			{ID: "FS-001", Liters: 40, TotalCost: 260},
			{ID: "FS-002", Liters: 25, TotalCost: 162.5},
		},
	}
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(metricsFixture())

	assert.Equal(t, 3, m.FleetTotal)
	assert.Equal(t, 1, m.OperationalCount)
	assert.Equal(t, 1, m.MaintenanceCount)
	assert.Equal(t, 1, m.StoppedCount)
	assert.Equal(t, 2, m.ActiveOperatorsCount)
	assert.Equal(t, 1, m.ActiveOperationsCount)
	assert.Equal(t, 3, m.CompletedOperationsCount)
	assert.Equal(t, 65.0, m.TotalFuelConsumed)
	assert.InDelta(t, 672.5, m.DailyOperationalCost, 1e-9, "fuel plus maintenance costs")
	assert.InDelta(t, 80.0, m.OverallEfficiency, 1e-9)
	assert.InDelta(t, 82.0, m.OverallAvailability, 1e-9)
	assert.InDelta(t, 90.0, m.AverageProductivity, 1e-9, "mean over operations that report productivity")
	assert.InDelta(t, 50.0, m.AverageOperationTime, 1e-9, "mean over completed operations with a duration")
	assert.Equal(t, 1, m.CriticalAlertsCount, "completed critical orders do not count")
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(Collections{})

	assert.Zero(t, m.FleetTotal)
	assert.Zero(t, m.OverallEfficiency)
	assert.Zero(t, m.AverageProductivity)
	assert.Zero(t, m.AverageOperationTime)
	assert.Zero(t, m.DailyOperationalCost)
}

func TestComputeMetrics_Deterministic(t *testing.T) {
	c := metricsFixture()
	first := ComputeMetrics(c)
	second := ComputeMetrics(c)

	assert.Equal(t, first, second)
}

func TestComputeMetrics_IgnoresInput(t *testing.T) {
	c := metricsFixture()
	ComputeMetrics(c)

	// Recompute never mutates what it reads.
	assert.Equal(t, metricsFixture().Forklifts, c.Forklifts)
	assert.Equal(t, models.MaintenanceOpen, c.MaintenanceOrders[0].Status)
}
