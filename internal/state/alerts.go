package state

import (
	"fmt"
	"time"

	"github.com/frotadev/fleet-manager/internal/models"
)

// lowEfficiencyThreshold is the efficiency percentage below which a forklift
// is flagged on the dashboard.
const lowEfficiencyThreshold = 80

// GenerateAlerts derives the dashboard alert list from the entity
// collections. Maintenance alerts come first, then low-efficiency alerts;
// the list is regenerated wholesale on every call. now stamps the
// efficiency alerts, which have no date of their own.
func GenerateAlerts(c Collections, now time.Time) []models.Alert {
	alerts := []models.Alert{}

	for _, mo := range c.MaintenanceOrders {
		if mo.Priority != models.PriorityCritical || mo.Status == models.MaintenanceCompleted {
			continue
		}
		alerts = append(alerts, models.Alert{
			ID:          "alert-" + mo.ID,
			Kind:        models.AlertMaintenance,
			Level:       models.AlertLevelCritical,
			Title:       fmt.Sprintf("Critical maintenance - %s", mo.ForkliftID),
			Description: mo.ProblemDescription,
			OccurredAt:  mo.OpenedDate,
			Responsible: mo.TechnicianID,
		})
	}

	for _, f := range c.Forklifts {
		if f.Efficiency >= lowEfficiencyThreshold {
			continue
		}
		alerts = append(alerts, models.Alert{
			ID:          "alert-eff-" + f.ID,
			Kind:        models.AlertOperation,
			Level:       models.AlertLevelMedium,
			Title:       fmt.Sprintf("Low efficiency - %s", f.ID),
			Description: fmt.Sprintf("Efficiency of %.0f%% is below the %d%% target", f.Efficiency, lowEfficiencyThreshold),
			OccurredAt:  now,
		})
	}

	return alerts
}
