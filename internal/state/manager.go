// Package state implements the in-memory fleet state manager: the five
// entity collections, their mutation API, the cross-entity consistency
// rules, and the derived metrics and alert views.
package state

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/frotadev/fleet-manager/internal/models"
)

// Event describes a committed mutation. Subscribers use the token to detect
// change without diffing collections.
type Event struct {
	Token          uint64    `json:"token"`
	LastUpdate     time.Time `json:"last_update"`
	CriticalAlerts int       `json:"critical_alerts"`
}

// Manager owns the fleet collections exclusively. All reads return copies;
// all writes go through the mutation methods, each of which runs its full
// cascade (validation, consistency rules, metrics and alert recomputation,
// token bump) before returning.
type Manager struct {
	mu         sync.RWMutex
	notifyMu   sync.Mutex
	state      fleetState
	metrics    models.MetricsSnapshot
	alerts     []models.Alert
	token      uint64
	lastUpdate time.Time
	nowFn      func() time.Time
	logger     *log.Logger
	onCommit   []func(Event)
}

// NewManager constructs an empty fleet state manager.
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.StandardLogger()
	}
	m := &Manager{
		nowFn:  func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
	m.lastUpdate = m.nowFn()
	m.alerts = []models.Alert{}
	return m
}

// OnCommit registers fn to be invoked after every committed mutation.
// Callbacks run outside the state lock, in registration order, and events
// are delivered in strictly increasing token order.
func (m *Manager) OnCommit(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCommit = append(m.onCommit, fn)
}

func (m *Manager) commitLocked(next fleetState, action string) Event {
	m.state = next
	cols := next.collections()
	m.metrics = ComputeMetrics(cols)
	m.alerts = GenerateAlerts(cols, m.nowFn())
	m.token++
	m.lastUpdate = m.nowFn()
	m.logger.WithFields(log.Fields{
		"action": action,
		"token":  m.token,
	}).Debug("fleet state committed")
	return Event{Token: m.token, LastUpdate: m.lastUpdate, CriticalAlerts: m.metrics.CriticalAlertsCount}
}

// finishCommit is called with m.mu held. It snapshots the callback list,
// then acquires the delivery lock before releasing m.mu so that callbacks
// for consecutive commits can never observe events out of token order.
func (m *Manager) finishCommit(ev Event) {
	subs := make([]func(Event), len(m.onCommit))
	copy(subs, m.onCommit)
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func duplicateIDError(id string) error {
	verr := &ValidationError{}
	verr.add("id", "entity "+id+" already exists")
	return verr
}

// normalizeCertifications derives each certification's validity from its
// expiration date at write time.
func normalizeCertifications(o *models.Operator, now time.Time) {
	for i := range o.Certifications {
		o.Certifications[i].Status = models.CertificationStatusAt(o.Certifications[i].ExpirationDate, now)
	}
}

// Forklifts --------------------------------------------------------------

// AddForklift appends a forklift to the fleet. The ID must not already exist.
func (m *Manager) AddForklift(f models.Forklift) error {
	m.mu.Lock()
	if m.state.forkliftIndex(f.ID) >= 0 {
		m.mu.Unlock()
		return duplicateIDError(f.ID)
	}
	if err := m.state.validateForklift(f, ""); err != nil {
		m.mu.Unlock()
		return err
	}
	next := m.state.clone()
	next.forklifts = append(next.forklifts, cloneForklift(f))
	ev := m.commitLocked(next, "add_forklift")
	m.finishCommit(ev)
	return nil
}

// UpdateForklift applies a patch to the forklift with the given ID. Missing
// IDs are silent no-ops.
func (m *Manager) UpdateForklift(id string, patch models.ForkliftPatch) error {
	m.mu.Lock()
	idx := m.state.forkliftIndex(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	updated := next.forklifts[idx]
	patch.Apply(&updated)
	updated.ID = id
	if err := next.validateForklift(updated, id); err != nil {
		m.mu.Unlock()
		return err
	}
	next.forklifts[idx] = updated
	ev := m.commitLocked(next, "update_forklift")
	m.finishCommit(ev)
	return nil
}

// DeleteForklift removes a forklift and cascades to the operations,
// maintenance orders and fuel supplies referencing it.
func (m *Manager) DeleteForklift(id string) error {
	m.mu.Lock()
	if m.state.forkliftIndex(id) < 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	forklifts := next.forklifts[:0]
	for _, f := range next.forklifts {
		if f.ID != id {
			forklifts = append(forklifts, f)
		}
	}
	next.forklifts = forklifts
	operations := next.operations[:0]
	for _, op := range next.operations {
		if op.ForkliftID != id {
			operations = append(operations, op)
		}
	}
	next.operations = operations
	orders := next.maintenanceOrders[:0]
	for _, mo := range next.maintenanceOrders {
		if mo.ForkliftID != id {
			orders = append(orders, mo)
		}
	}
	next.maintenanceOrders = orders
	supplies := next.fuelSupplies[:0]
	for _, fs := range next.fuelSupplies {
		if fs.ForkliftID != id {
			supplies = append(supplies, fs)
		}
	}
	next.fuelSupplies = supplies
	ev := m.commitLocked(next, "delete_forklift")
	m.finishCommit(ev)
	return nil
}

// Operators --------------------------------------------------------------

// AddOperator appends an operator. Certification statuses are derived from
// their expiration dates at write time.
func (m *Manager) AddOperator(o models.Operator) error {
	m.mu.Lock()
	if _, exists := m.state.operatorByID(o.ID); exists {
		m.mu.Unlock()
		return duplicateIDError(o.ID)
	}
	if err := m.state.validateOperator(o, ""); err != nil {
		m.mu.Unlock()
		return err
	}
	next := m.state.clone()
	added := cloneOperator(o)
	normalizeCertifications(&added, m.nowFn())
	next.operators = append(next.operators, added)
	ev := m.commitLocked(next, "add_operator")
	m.finishCommit(ev)
	return nil
}

// UpdateOperator applies a patch to the operator with the given ID.
func (m *Manager) UpdateOperator(id string, patch models.OperatorPatch) error {
	m.mu.Lock()
	if _, exists := m.state.operatorByID(id); !exists {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	var idx int
	for i := range next.operators {
		if next.operators[i].ID == id {
			idx = i
			break
		}
	}
	updated := cloneOperator(next.operators[idx])
	patch.Apply(&updated)
	updated.ID = id
	if err := next.validateOperator(updated, id); err != nil {
		m.mu.Unlock()
		return err
	}
	normalizeCertifications(&updated, m.nowFn())
	next.operators[idx] = updated
	ev := m.commitLocked(next, "update_operator")
	m.finishCommit(ev)
	return nil
}

// DeleteOperator removes an operator and cascades to the operations
// referencing it.
func (m *Manager) DeleteOperator(id string) error {
	m.mu.Lock()
	if _, exists := m.state.operatorByID(id); !exists {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	operators := next.operators[:0]
	for _, o := range next.operators {
		if o.ID != id {
			operators = append(operators, o)
		}
	}
	next.operators = operators
	operations := next.operations[:0]
	for _, op := range next.operations {
		if op.OperatorID != id {
			operations = append(operations, op)
		}
	}
	next.operations = operations
	ev := m.commitLocked(next, "delete_operator")
	m.finishCommit(ev)
	return nil
}

// Operations -------------------------------------------------------------

// AddOperation appends an operation and reconciles the referenced forklift.
func (m *Manager) AddOperation(op models.Operation) error {
	m.mu.Lock()
	if m.state.operationIndex(op.ID) >= 0 {
		m.mu.Unlock()
		return duplicateIDError(op.ID)
	}
	if err := m.state.validateOperation(op, ""); err != nil {
		m.mu.Unlock()
		return err
	}
	next := m.state.clone()
	next.operations = append(next.operations, cloneOperation(op))
	next.applyOperationRules(len(next.operations) - 1)
	ev := m.commitLocked(next, "add_operation")
	m.finishCommit(ev)
	return nil
}

// UpdateOperation applies a patch to the operation with the given ID and
// reconciles the referenced forklift when the status changes.
func (m *Manager) UpdateOperation(id string, patch models.OperationPatch) error {
	m.mu.Lock()
	idx := m.state.operationIndex(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	updated := cloneOperation(next.operations[idx])
	patch.Apply(&updated)
	updated.ID = id
	if err := next.validateOperation(updated, id); err != nil {
		m.mu.Unlock()
		return err
	}
	next.operations[idx] = updated
	next.applyOperationRules(idx)
	ev := m.commitLocked(next, "update_operation")
	m.finishCommit(ev)
	return nil
}

// FinishOperation completes an in-progress operation: it stamps the end
// time, derives the actual duration in minutes, and releases the forklift.
// Missing or already completed operations are silent no-ops.
func (m *Manager) FinishOperation(id string) error {
	m.mu.Lock()
	idx := m.state.operationIndex(id)
	if idx < 0 || m.state.operations[idx].Status == models.OperationCompleted {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	op := &next.operations[idx]
	op.Status = models.OperationCompleted
	end := m.nowFn()
	op.EndTime = &end
	op.ActualDuration = nil
	next.applyOperationRules(idx)
	ev := m.commitLocked(next, "finish_operation")
	m.finishCommit(ev)
	return nil
}

// DeleteOperation removes an operation.
func (m *Manager) DeleteOperation(id string) error {
	m.mu.Lock()
	if m.state.operationIndex(id) < 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	operations := next.operations[:0]
	for _, op := range next.operations {
		if op.ID != id {
			operations = append(operations, op)
		}
	}
	next.operations = operations
	ev := m.commitLocked(next, "delete_operation")
	m.finishCommit(ev)
	return nil
}

// Maintenance orders -----------------------------------------------------

func (s *fleetState) maintenanceOrderIndex(id string) int {
	for i := range s.maintenanceOrders {
		if s.maintenanceOrders[i].ID == id {
			return i
		}
	}
	return -1
}

// AddMaintenanceOrder appends a maintenance order and couples the referenced
// forklift's status to it.
func (m *Manager) AddMaintenanceOrder(mo models.MaintenanceOrder) error {
	m.mu.Lock()
	if m.state.maintenanceOrderIndex(mo.ID) >= 0 {
		m.mu.Unlock()
		return duplicateIDError(mo.ID)
	}
	if err := m.state.validateMaintenanceOrder(mo); err != nil {
		m.mu.Unlock()
		return err
	}
	next := m.state.clone()
	next.maintenanceOrders = append(next.maintenanceOrders, cloneMaintenanceOrder(mo))
	next.applyMaintenanceRules(mo)
	ev := m.commitLocked(next, "add_maintenance_order")
	m.finishCommit(ev)
	return nil
}

// UpdateMaintenanceOrder applies a patch to the maintenance order with the
// given ID. Transitioning to completed without an explicit completion date
// stamps the current time.
func (m *Manager) UpdateMaintenanceOrder(id string, patch models.MaintenanceOrderPatch) error {
	m.mu.Lock()
	idx := m.state.maintenanceOrderIndex(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	updated := cloneMaintenanceOrder(next.maintenanceOrders[idx])
	patch.Apply(&updated)
	updated.ID = id
	if updated.Status == models.MaintenanceCompleted && updated.CompletedDate == nil {
		completed := m.nowFn()
		updated.CompletedDate = &completed
	}
	if err := next.validateMaintenanceOrder(updated); err != nil {
		m.mu.Unlock()
		return err
	}
	next.maintenanceOrders[idx] = updated
	next.applyMaintenanceRules(updated)
	ev := m.commitLocked(next, "update_maintenance_order")
	m.finishCommit(ev)
	return nil
}

// DeleteMaintenanceOrder removes a maintenance order.
func (m *Manager) DeleteMaintenanceOrder(id string) error {
	m.mu.Lock()
	if m.state.maintenanceOrderIndex(id) < 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	orders := next.maintenanceOrders[:0]
	for _, mo := range next.maintenanceOrders {
		if mo.ID != id {
			orders = append(orders, mo)
		}
	}
	next.maintenanceOrders = orders
	ev := m.commitLocked(next, "delete_maintenance_order")
	m.finishCommit(ev)
	return nil
}

// Fuel supplies ----------------------------------------------------------

func (s *fleetState) fuelSupplyIndex(id string) int {
	for i := range s.fuelSupplies {
		if s.fuelSupplies[i].ID == id {
			return i
		}
	}
	return -1
}

// AddFuelSupply appends a refueling record.
func (m *Manager) AddFuelSupply(fs models.FuelSupply) error {
	m.mu.Lock()
	if m.state.fuelSupplyIndex(fs.ID) >= 0 {
		m.mu.Unlock()
		return duplicateIDError(fs.ID)
	}
	if err := m.state.validateFuelSupply(fs); err != nil {
		m.mu.Unlock()
		return err
	}
	next := m.state.clone()
	next.fuelSupplies = append(next.fuelSupplies, cloneFuelSupply(fs))
	ev := m.commitLocked(next, "add_fuel_supply")
	m.finishCommit(ev)
	return nil
}

// UpdateFuelSupply applies a patch to the fuel supply with the given ID.
func (m *Manager) UpdateFuelSupply(id string, patch models.FuelSupplyPatch) error {
	m.mu.Lock()
	idx := m.state.fuelSupplyIndex(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	updated := cloneFuelSupply(next.fuelSupplies[idx])
	patch.Apply(&updated)
	updated.ID = id
	if err := next.validateFuelSupply(updated); err != nil {
		m.mu.Unlock()
		return err
	}
	next.fuelSupplies[idx] = updated
	ev := m.commitLocked(next, "update_fuel_supply")
	m.finishCommit(ev)
	return nil
}

// DeleteFuelSupply removes a fuel supply record.
func (m *Manager) DeleteFuelSupply(id string) error {
	m.mu.Lock()
	if m.state.fuelSupplyIndex(id) < 0 {
		m.mu.Unlock()
		return nil
	}
	next := m.state.clone()
	supplies := next.fuelSupplies[:0]
	for _, fs := range next.fuelSupplies {
		if fs.ID != id {
			supplies = append(supplies, fs)
		}
	}
	next.fuelSupplies = supplies
	ev := m.commitLocked(next, "delete_fuel_supply")
	m.finishCommit(ev)
	return nil
}

// Reads ------------------------------------------------------------------

// Forklifts returns a copy of the forklift collection.
func (m *Manager) Forklifts() []models.Forklift {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneForklifts(m.state.forklifts)
}

// GetForklift retrieves a forklift by ID.
func (m *Manager) GetForklift(id string) (models.Forklift, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.state.forkliftIndex(id)
	if idx < 0 {
		return models.Forklift{}, false
	}
	return cloneForklift(m.state.forklifts[idx]), true
}

// Operators returns a copy of the operator collection.
func (m *Manager) Operators() []models.Operator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneOperators(m.state.operators)
}

// GetOperator retrieves an operator by ID.
func (m *Manager) GetOperator(id string) (models.Operator, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.state.operatorByID(id)
	if !ok {
		return models.Operator{}, false
	}
	return cloneOperator(o), true
}

// Operations returns a copy of the operation collection.
func (m *Manager) Operations() []models.Operation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneOperations(m.state.operations)
}

// GetOperation retrieves an operation by ID.
func (m *Manager) GetOperation(id string) (models.Operation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.state.operationIndex(id)
	if idx < 0 {
		return models.Operation{}, false
	}
	return cloneOperation(m.state.operations[idx]), true
}

// MaintenanceOrders returns a copy of the maintenance order collection.
func (m *Manager) MaintenanceOrders() []models.MaintenanceOrder {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneMaintenanceOrders(m.state.maintenanceOrders)
}

// GetMaintenanceOrder retrieves a maintenance order by ID.
func (m *Manager) GetMaintenanceOrder(id string) (models.MaintenanceOrder, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.state.maintenanceOrderIndex(id)
	if idx < 0 {
		return models.MaintenanceOrder{}, false
	}
	return cloneMaintenanceOrder(m.state.maintenanceOrders[idx]), true
}

// FuelSupplies returns a copy of the fuel supply collection.
func (m *Manager) FuelSupplies() []models.FuelSupply {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneFuelSupplies(m.state.fuelSupplies)
}

// GetFuelSupply retrieves a fuel supply record by ID.
func (m *Manager) GetFuelSupply(id string) (models.FuelSupply, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.state.fuelSupplyIndex(id)
	if idx < 0 {
		return models.FuelSupply{}, false
	}
	return cloneFuelSupply(m.state.fuelSupplies[idx]), true
}

// Metrics returns the current derived metrics snapshot.
func (m *Manager) Metrics() models.MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// Alerts returns a copy of the current derived alert list.
func (m *Manager) Alerts() []models.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAlerts(m.alerts)
}

// ChangeToken reports the current change token. The token increases
// monotonically with every committed mutation.
func (m *Manager) ChangeToken() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// LastUpdate reports when the state last changed.
func (m *Manager) LastUpdate() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdate
}

// Snapshots --------------------------------------------------------------

// ExportSnapshot produces the full persisted-state document for the
// persistence boundary.
func (m *Manager) ExportSnapshot() models.PersistedState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.PersistedState{
		Forklifts:         cloneForklifts(m.state.forklifts),
		Operators:         cloneOperators(m.state.operators),
		Operations:        cloneOperations(m.state.operations),
		MaintenanceOrders: cloneMaintenanceOrders(m.state.maintenanceOrders),
		FuelSupplies:      cloneFuelSupplies(m.state.fuelSupplies),
		Metrics:           m.metrics,
		Alerts:            cloneAlerts(m.alerts),
		LastUpdate:        m.lastUpdate,
	}
}

// LoadSnapshot replaces the whole state with a persisted snapshot. Metrics
// and alerts are rederived from the loaded collections rather than trusted
// from the document; the snapshot's LastUpdate is preserved so a
// load-after-export round trip restores the state it exported.
func (m *Manager) LoadSnapshot(ps models.PersistedState) {
	m.mu.Lock()
	next := fleetState{
		forklifts:         cloneForklifts(ps.Forklifts),
		operators:         cloneOperators(ps.Operators),
		operations:        cloneOperations(ps.Operations),
		maintenanceOrders: cloneMaintenanceOrders(ps.MaintenanceOrders),
		fuelSupplies:      cloneFuelSupplies(ps.FuelSupplies),
	}
	ev := m.commitLocked(next, "load_snapshot")
	if !ps.LastUpdate.IsZero() {
		m.lastUpdate = ps.LastUpdate
		ev.LastUpdate = ps.LastUpdate
	}
	m.finishCommit(ev)
}
