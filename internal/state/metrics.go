package state

import (
	"github.com/frotadev/fleet-manager/internal/models"
)

// ComputeMetrics derives the aggregate dashboard snapshot from the entity
// collections. It is a pure function: it reads nothing but its argument and
// is re-run in full after every mutation, never updated incrementally.
func ComputeMetrics(c Collections) models.MetricsSnapshot {
	var m models.MetricsSnapshot

	m.FleetTotal = len(c.Forklifts)
	var efficiencySum, availabilitySum float64
	for _, f := range c.Forklifts {
		switch f.Status {
		case models.ForkliftOperational:
			m.OperationalCount++
		case models.ForkliftUnderMaintenance:
			m.MaintenanceCount++
		case models.ForkliftStopped:
			m.StoppedCount++
		}
		efficiencySum += f.Efficiency
		availabilitySum += f.Availability
	}
	if m.FleetTotal > 0 {
		m.OverallEfficiency = efficiencySum / float64(m.FleetTotal)
		m.OverallAvailability = availabilitySum / float64(m.FleetTotal)
	}

	for _, o := range c.Operators {
		if o.Status == models.OperatorActive {
			m.ActiveOperatorsCount++
		}
	}

	var productivitySum float64
	var productivityCount int
	var durationSum float64
	var durationCount int
	for _, op := range c.Operations {
		switch op.Status {
		case models.OperationInProgress:
			m.ActiveOperationsCount++
		case models.OperationCompleted:
			m.CompletedOperationsCount++
			if op.ActualDuration != nil {
				durationSum += float64(*op.ActualDuration)
				durationCount++
			}
		}
		if op.Productivity != nil {
			productivitySum += *op.Productivity
			productivityCount++
		}
	}
	if productivityCount > 0 {
		m.AverageProductivity = productivitySum / float64(productivityCount)
	}
	if durationCount > 0 {
		m.AverageOperationTime = durationSum / float64(durationCount)
	}

	for _, fs := range c.FuelSupplies {
		m.TotalFuelConsumed += fs.Liters
		m.DailyOperationalCost += fs.TotalCost
	}
	for _, mo := range c.MaintenanceOrders {
		m.DailyOperationalCost += mo.Costs.Total
		if mo.Priority == models.PriorityCritical && mo.Status != models.MaintenanceCompleted {
			m.CriticalAlertsCount++
		}
	}

	return m
}
