package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frotadev/fleet-manager/internal/models"
)

func TestGenerateAlerts_CriticalMaintenance(t *testing.T) {
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	opened := now.Add(-3 * time.Hour)
	c := Collections{
		MaintenanceOrders: []models.MaintenanceOrder{
			{ID: "MO-001", ForkliftID: "E-001", Priority: models.PriorityCritical, Status: models.MaintenanceOpen, ProblemDescription: "brake failure", TechnicianID: "OP-007", OpenedDate: opened},
			{ID: "MO-002", ForkliftID: "E-002", Priority: models.PriorityCritical, Status: models.MaintenanceCompleted, ProblemDescription: "done"},
			{ID: "MO-003", ForkliftID: "E-003", Priority: models.PriorityHigh, Status: models.MaintenanceOpen, ProblemDescription: "slow lift"},
		},
	}

	alerts := GenerateAlerts(c, now)

	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, "alert-MO-001", a.ID)
	assert.Equal(t, models.AlertMaintenance, a.Kind)
	assert.Equal(t, models.AlertLevelCritical, a.Level)
	assert.Equal(t, "brake failure", a.Description)
	assert.Equal(t, opened, a.OccurredAt)
	assert.Equal(t, "OP-007", a.Responsible)
}

func TestGenerateAlerts_LowEfficiency(t *testing.T) {
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	c := Collections{
		Forklifts: []models.Forklift{
			{ID: "E-001", Efficiency: 72},
			{ID: "E-002", Efficiency: 80},
			{ID: "E-003", Efficiency: 95},
		},
	}

	alerts := GenerateAlerts(c, now)

	require.Len(t, alerts, 1, "the threshold itself is not below target")
	assert.Equal(t, "alert-eff-E-001", alerts[0].ID)
	assert.Equal(t, models.AlertLevelMedium, alerts[0].Level)
	assert.Equal(t, now, alerts[0].OccurredAt)
}

func TestGenerateAlerts_Ordering(t *testing.T) {
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	c := Collections{
		Forklifts: []models.Forklift{
			{ID: "E-001", Efficiency: 50},
		},
		MaintenanceOrders: []models.MaintenanceOrder{
			{ID: "MO-001", ForkliftID: "E-001", Priority: models.PriorityCritical, Status: models.MaintenanceInProgress, ProblemDescription: "engine"},
		},
	}

	alerts := GenerateAlerts(c, now)

	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertMaintenance, alerts[0].Kind, "maintenance alerts precede efficiency alerts")
	assert.Equal(t, models.AlertOperation, alerts[1].Kind)
}

func TestGenerateAlerts_RegeneratedWholesale(t *testing.T) {
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	c := Collections{
		Forklifts: []models.Forklift{{ID: "E-001", Efficiency: 72}},
	}

	first := GenerateAlerts(c, now)
	require.Len(t, first, 1)

	// Fixing the condition clears its alert on the next derivation.
	c.Forklifts[0].Efficiency = 85
	second := GenerateAlerts(c, now)
	assert.Empty(t, second)
}

func TestGenerateAlerts_EmptyStateYieldsEmptyList(t *testing.T) {
	alerts := GenerateAlerts(Collections{}, time.Now())
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
