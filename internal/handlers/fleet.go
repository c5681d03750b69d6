package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/frotadev/fleet-manager/internal/models"
	"github.com/frotadev/fleet-manager/internal/state"
)

// FleetHandler exposes the fleet state manager over HTTP. Every mutation
// endpoint delegates to the manager, which runs the full consistency and
// recomputation cascade before the response is written.
type FleetHandler struct {
	manager *state.Manager
	logger  *log.Logger
}

// NewFleetHandler creates a new fleet API handler.
func NewFleetHandler(manager *state.Manager, logger *log.Logger) *FleetHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &FleetHandler{manager: manager, logger: logger}
}

func (h *FleetHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeMutationError maps manager errors to HTTP responses. Validation
// failures carry their field list so clients can surface them per input.
func (h *FleetHandler) writeMutationError(w http.ResponseWriter, err error) {
	if state.IsValidationError(err) {
		h.writeJSON(w, http.StatusBadRequest, err)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// pathID extracts the trailing identifier from a request path given its
// collection prefix, e.g. /api/forklifts/E-001 -> E-001.
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	return strings.Trim(id, "/")
}

// Forklifts handles the forklift collection endpoint.
func (h *FleetHandler) Forklifts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.manager.Forklifts())
	case http.MethodPost:
		var f models.Forklift
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.AddForklift(f); err != nil {
			h.writeMutationError(w, err)
			return
		}
		created, _ := h.manager.GetForklift(f.ID)
		h.writeJSON(w, http.StatusCreated, created)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ForkliftByID handles a single forklift endpoint.
func (h *FleetHandler) ForkliftByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/forklifts")
	if id == "" {
		http.Error(w, "Forklift ID required", http.StatusBadRequest)
		return
	}
	if _, ok := h.manager.GetForklift(id); !ok {
		http.Error(w, "Forklift not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		f, _ := h.manager.GetForklift(id)
		h.writeJSON(w, http.StatusOK, f)
	case http.MethodPut:
		var patch models.ForkliftPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.UpdateForklift(id, patch); err != nil {
			h.writeMutationError(w, err)
			return
		}
		updated, _ := h.manager.GetForklift(id)
		h.writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.manager.DeleteForklift(id); err != nil {
			h.writeMutationError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Operators handles the operator collection endpoint.
func (h *FleetHandler) Operators(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.manager.Operators())
	case http.MethodPost:
		var o models.Operator
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.AddOperator(o); err != nil {
			h.writeMutationError(w, err)
			return
		}
		created, _ := h.manager.GetOperator(o.ID)
		h.writeJSON(w, http.StatusCreated, created)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// OperatorByID handles a single operator endpoint.
func (h *FleetHandler) OperatorByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/operators")
	if id == "" {
		http.Error(w, "Operator ID required", http.StatusBadRequest)
		return
	}
	if _, ok := h.manager.GetOperator(id); !ok {
		http.Error(w, "Operator not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		o, _ := h.manager.GetOperator(id)
		h.writeJSON(w, http.StatusOK, o)
	case http.MethodPut:
		var patch models.OperatorPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.UpdateOperator(id, patch); err != nil {
			h.writeMutationError(w, err)
			return
		}
		updated, _ := h.manager.GetOperator(id)
		h.writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.manager.DeleteOperator(id); err != nil {
			h.writeMutationError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Operations handles the operation collection endpoint.
func (h *FleetHandler) Operations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.manager.Operations())
	case http.MethodPost:
		var op models.Operation
		if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.AddOperation(op); err != nil {
			h.writeMutationError(w, err)
			return
		}
		created, _ := h.manager.GetOperation(op.ID)
		h.writeJSON(w, http.StatusCreated, created)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// OperationByID handles a single operation endpoint, including the finish
// action at /api/operations/{id}/finish.
func (h *FleetHandler) OperationByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/operations")
	if finishID, ok := strings.CutSuffix(id, "/finish"); ok {
		h.finishOperation(w, r, finishID)
		return
	}
	if id == "" {
		http.Error(w, "Operation ID required", http.StatusBadRequest)
		return
	}
	if _, ok := h.manager.GetOperation(id); !ok {
		http.Error(w, "Operation not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		op, _ := h.manager.GetOperation(id)
		h.writeJSON(w, http.StatusOK, op)
	case http.MethodPut:
		var patch models.OperationPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.UpdateOperation(id, patch); err != nil {
			h.writeMutationError(w, err)
			return
		}
		updated, _ := h.manager.GetOperation(id)
		h.writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.manager.DeleteOperation(id); err != nil {
			h.writeMutationError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *FleetHandler) finishOperation(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := h.manager.GetOperation(id); !ok {
		http.Error(w, "Operation not found", http.StatusNotFound)
		return
	}
	if err := h.manager.FinishOperation(id); err != nil {
		h.writeMutationError(w, err)
		return
	}
	finished, _ := h.manager.GetOperation(id)
	h.writeJSON(w, http.StatusOK, finished)
}

// MaintenanceOrders handles the maintenance order collection endpoint.
func (h *FleetHandler) MaintenanceOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.manager.MaintenanceOrders())
	case http.MethodPost:
		var mo models.MaintenanceOrder
		if err := json.NewDecoder(r.Body).Decode(&mo); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.AddMaintenanceOrder(mo); err != nil {
			h.writeMutationError(w, err)
			return
		}
		created, _ := h.manager.GetMaintenanceOrder(mo.ID)
		h.writeJSON(w, http.StatusCreated, created)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// MaintenanceOrderByID handles a single maintenance order endpoint.
func (h *FleetHandler) MaintenanceOrderByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/maintenance-orders")
	if id == "" {
		http.Error(w, "Maintenance order ID required", http.StatusBadRequest)
		return
	}
	if _, ok := h.manager.GetMaintenanceOrder(id); !ok {
		http.Error(w, "Maintenance order not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		mo, _ := h.manager.GetMaintenanceOrder(id)
		h.writeJSON(w, http.StatusOK, mo)
	case http.MethodPut:
		var patch models.MaintenanceOrderPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.UpdateMaintenanceOrder(id, patch); err != nil {
			h.writeMutationError(w, err)
			return
		}
		updated, _ := h.manager.GetMaintenanceOrder(id)
		h.writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.manager.DeleteMaintenanceOrder(id); err != nil {
			h.writeMutationError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// FuelSupplies handles the fuel supply collection endpoint.
func (h *FleetHandler) FuelSupplies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.manager.FuelSupplies())
	case http.MethodPost:
		var fs models.FuelSupply
		if err := json.NewDecoder(r.Body).Decode(&fs); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.AddFuelSupply(fs); err != nil {
			h.writeMutationError(w, err)
			return
		}
		created, _ := h.manager.GetFuelSupply(fs.ID)
		h.writeJSON(w, http.StatusCreated, created)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// FuelSupplyByID handles a single fuel supply endpoint.
func (h *FleetHandler) FuelSupplyByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/fuel-supplies")
	if id == "" {
		http.Error(w, "Fuel supply ID required", http.StatusBadRequest)
		return
	}
	if _, ok := h.manager.GetFuelSupply(id); !ok {
		http.Error(w, "Fuel supply not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		fs, _ := h.manager.GetFuelSupply(id)
		h.writeJSON(w, http.StatusOK, fs)
	case http.MethodPut:
		var patch models.FuelSupplyPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.manager.UpdateFuelSupply(id, patch); err != nil {
			h.writeMutationError(w, err)
			return
		}
		updated, _ := h.manager.GetFuelSupply(id)
		h.writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.manager.DeleteFuelSupply(id); err != nil {
			h.writeMutationError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Metrics serves the current derived metrics snapshot.
func (h *FleetHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.manager.Metrics())
}

// Alerts serves the current derived alert list.
func (h *FleetHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.manager.Alerts())
}

// StateToken serves the change token so dashboards can poll for drift
// without diffing collections.
func (h *FleetHandler) StateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		Token      uint64    `json:"token"`
		LastUpdate time.Time `json:"last_update"`
	}{
		Token:      h.manager.ChangeToken(),
		LastUpdate: h.manager.LastUpdate(),
	})
}
