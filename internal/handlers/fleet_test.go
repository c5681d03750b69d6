package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frotadev/fleet-manager/internal/models"
	"github.com/frotadev/fleet-manager/internal/state"
)

func newFleetHandler(t *testing.T) (*FleetHandler, *state.Manager) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	manager := state.NewManager(logger)
	return NewFleetHandler(manager, logger), manager
}

func seedForklift(t *testing.T, manager *state.Manager, id string) {
	t.Helper()
	require.NoError(t, manager.AddForklift(models.Forklift{
		ID:           id,
		Model:        "8FGU25",
		Brand:        "Toyota",
		Type:         models.ForkliftGas,
		Status:       models.ForkliftOperational,
		Capacity:     2500,
		SerialNumber: "SN-" + id,
		Efficiency:   90,
		Availability: 95,
	}))
}

func seedOperator(t *testing.T, manager *state.Manager, id string) {
	t.Helper()
	require.NoError(t, manager.AddOperator(models.Operator{
		ID:     id,
		Name:   "Maria Santos",
		TaxID:  "tax-" + id,
		Email:  id + "@fleet.test",
		Role:   models.RoleForkliftOperator,
		Status: models.OperatorActive,
	}))
}

func TestFleetHandler_CreateForklift(t *testing.T) {
	handler, manager := newFleetHandler(t)

	body, _ := json.Marshal(models.Forklift{
		ID:           "E-001",
		Model:        "H50FT",
		Brand:        "Hyster",
		Type:         models.ForkliftGas,
		Status:       models.ForkliftOperational,
		Capacity:     2200,
		SerialNumber: "HYS-001",
		Efficiency:   88,
		Availability: 92,
	})
	req := httptest.NewRequest("POST", "/api/forklifts", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Forklifts(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var created models.Forklift
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Hyster", created.Brand)
	assert.Equal(t, uint64(1), manager.ChangeToken())
}

func TestFleetHandler_CreateForklift_ValidationError(t *testing.T) {
	handler, manager := newFleetHandler(t)

	body, _ := json.Marshal(models.Forklift{ID: "E-001", Type: "hovercraft"})
	req := httptest.NewRequest("POST", "/api/forklifts", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Forklifts(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var verr state.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.NotEmpty(t, verr.Fields)
	assert.Empty(t, manager.Forklifts())
}

func TestFleetHandler_CreateForklift_InvalidJSON(t *testing.T) {
	handler, _ := newFleetHandler(t)

	req := httptest.NewRequest("POST", "/api/forklifts", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	handler.Forklifts(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFleetHandler_ListForklifts(t *testing.T) {
	handler, manager := newFleetHandler(t)
	seedForklift(t, manager, "E-001")
	seedForklift(t, manager, "E-002")

	req := httptest.NewRequest("GET", "/api/forklifts", nil)
	w := httptest.NewRecorder()

	handler.Forklifts(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var forklifts []models.Forklift
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forklifts))
	assert.Len(t, forklifts, 2)
}

func TestFleetHandler_UpdateForklift(t *testing.T) {
	handler, manager := newFleetHandler(t)
	seedForklift(t, manager, "E-001")

	body := []byte(`{"sector":"Warehouse B"}`)
	req := httptest.NewRequest("PUT", "/api/forklifts/E-001", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.ForkliftByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f, _ := manager.GetForklift("E-001")
	assert.Equal(t, "Warehouse B", f.Sector)
}

func TestFleetHandler_ForkliftNotFound(t *testing.T) {
	handler, _ := newFleetHandler(t)

	req := httptest.NewRequest("GET", "/api/forklifts/E-404", nil)
	w := httptest.NewRecorder()

	handler.ForkliftByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFleetHandler_DeleteForklift(t *testing.T) {
	handler, manager := newFleetHandler(t)
	seedForklift(t, manager, "E-001")

	req := httptest.NewRequest("DELETE", "/api/forklifts/E-001", nil)
	w := httptest.NewRecorder()

	handler.ForkliftByID(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, manager.Forklifts())
}

func TestFleetHandler_CreateOperation(t *testing.T) {
	handler, manager := newFleetHandler(t)
	seedForklift(t, manager, "E-001")
	seedOperator(t, manager, "OP-001")

	body, _ := json.Marshal(models.Operation{
		ID:                "OPR-001",
		ForkliftID:        "E-001",
		OperatorID:        "OP-001",
		Type:              models.OperationLoading,
		Status:            models.OperationInProgress,
		Priority:          models.PriorityNormal,
		StartTime:         time.Now().UTC(),
		EstimatedDuration: 45,
	})
	req := httptest.NewRequest("POST", "/api/operations", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Operations(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f, _ := manager.GetForklift("E-001")
	assert.Equal(t, "OP-001", f.CurrentOperatorID, "in-progress operation claims the forklift")
}

func TestFleetHandler_FinishOperation(t *testing.T) {
	handler, manager := newFleetHandler(t)
	seedForklift(t, manager, "E-001")
	seedOperator(t, manager, "OP-001")
	require.NoError(t, manager.AddOperation(models.Operation{
		ID:                "OPR-001",
		ForkliftID:        "E-001",
		OperatorID:        "OP-001",
		Type:              models.OperationMovement,
		Status:            models.OperationInProgress,
		Priority:          models.PriorityHigh,
		StartTime:         time.Now().UTC().Add(-20 * time.Minute),
		EstimatedDuration: 30,
	}))

	req := httptest.NewRequest("POST", "/api/operations/OPR-001/finish", nil)
	w := httptest.NewRecorder()

	handler.OperationByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var finished models.Operation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &finished))
	assert.Equal(t, models.OperationCompleted, finished.Status)
	assert.NotNil(t, finished.EndTime)
	assert.NotNil(t, finished.ActualDuration)

	f, _ := manager.GetForklift("E-001")
	assert.Empty(t, f.CurrentOperatorID)
}

func TestFleetHandler_FinishOperation_NotFound(t *testing.T) {
	handler, _ := newFleetHandler(t)

	req := httptest.NewRequest("POST", "/api/operations/OPR-404/finish", nil)
	w := httptest.NewRecorder()

	handler.OperationByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFleetHandler_CreateMaintenanceOrder_FlipsForklift(t *testing.T) {
	handler, manager := newFleetHandler(t)
	seedForklift(t, manager, "E-001")

	body, _ := json.Marshal(models.MaintenanceOrder{
		ID:                 "MO-001",
		ForkliftID:         "E-001",
		Type:               models.MaintenanceCorrective,
		Status:             models.MaintenanceOpen,
		Priority:           models.PriorityCritical,
		ProblemDescription: "transmission noise",
		OpenedDate:         time.Now().UTC(),
	})
	req := httptest.NewRequest("POST", "/api/maintenance-orders", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.MaintenanceOrders(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f, _ := manager.GetForklift("E-001")
	assert.Equal(t, models.ForkliftUnderMaintenance, f.Status)
	assert.Equal(t, 1, manager.Metrics().CriticalAlertsCount)
}

func TestFleetHandler_Metrics(t *testing.T) {
	handler, manager := newFleetHandler(t)
	seedForklift(t, manager, "E-001")
	seedForklift(t, manager, "E-002")

	req := httptest.NewRequest("GET", "/api/metrics", nil)
	w := httptest.NewRecorder()

	handler.Metrics(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var metrics models.MetricsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	assert.Equal(t, 2, metrics.FleetTotal)
	assert.Equal(t, 2, metrics.OperationalCount)
}

func TestFleetHandler_Alerts(t *testing.T) {
	handler, manager := newFleetHandler(t)
	lowEff := models.Forklift{
		ID:           "E-001",
		Model:        "8FGU25",
		Brand:        "Toyota",
		Type:         models.ForkliftElectric,
		Status:       models.ForkliftOperational,
		Capacity:     2000,
		SerialNumber: "SN-E-001",
		Efficiency:   65,
		Availability: 80,
	}
	require.NoError(t, manager.AddForklift(lowEff))

	req := httptest.NewRequest("GET", "/api/alerts", nil)
	w := httptest.NewRecorder()

	handler.Alerts(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var alerts []models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "alert-eff-E-001", alerts[0].ID)
}

func TestFleetHandler_StateToken(t *testing.T) {
	handler, manager := newFleetHandler(t)
	seedForklift(t, manager, "E-001")

	req := httptest.NewRequest("GET", "/api/state/token", nil)
	w := httptest.NewRecorder()

	handler.StateToken(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Token      uint64    `json:"token"`
		LastUpdate time.Time `json:"last_update"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, uint64(1), payload.Token)
	assert.False(t, payload.LastUpdate.IsZero())
}

func TestFleetHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newFleetHandler(t)

	req := httptest.NewRequest("DELETE", "/api/metrics", nil)
	w := httptest.NewRecorder()

	handler.Metrics(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
