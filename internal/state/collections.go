package state

import (
	"time"

	"github.com/frotadev/fleet-manager/internal/models"
)

// Collections bundles the five entity collections the derived views are
// computed from. Metric and alert computation take this value type so they
// stay pure functions of the data they are given.
type Collections struct {
	Forklifts         []models.Forklift
	Operators         []models.Operator
	Operations        []models.Operation
	MaintenanceOrders []models.MaintenanceOrder
	FuelSupplies      []models.FuelSupply
}

type fleetState struct {
	forklifts         []models.Forklift
	operators         []models.Operator
	operations        []models.Operation
	maintenanceOrders []models.MaintenanceOrder
	fuelSupplies      []models.FuelSupply
}

func (s fleetState) clone() fleetState {
	return fleetState{
		forklifts:         cloneForklifts(s.forklifts),
		operators:         cloneOperators(s.operators),
		operations:        cloneOperations(s.operations),
		maintenanceOrders: cloneMaintenanceOrders(s.maintenanceOrders),
		fuelSupplies:      cloneFuelSupplies(s.fuelSupplies),
	}
}

func (s fleetState) collections() Collections {
	return Collections{
		Forklifts:         s.forklifts,
		Operators:         s.operators,
		Operations:        s.operations,
		MaintenanceOrders: s.maintenanceOrders,
		FuelSupplies:      s.fuelSupplies,
	}
}

func cloneForklift(f models.Forklift) models.Forklift { return f }

func cloneForklifts(in []models.Forklift) []models.Forklift {
	out := make([]models.Forklift, len(in))
	for i, f := range in {
		out[i] = cloneForklift(f)
	}
	return out
}

func cloneOperator(o models.Operator) models.Operator {
	cp := o
	cp.Certifications = append([]models.Certification(nil), o.Certifications...)
	cp.Evaluations = append([]models.Evaluation(nil), o.Evaluations...)
	return cp
}

func cloneOperators(in []models.Operator) []models.Operator {
	out := make([]models.Operator, len(in))
	for i, o := range in {
		out[i] = cloneOperator(o)
	}
	return out
}

func cloneOperation(o models.Operation) models.Operation {
	cp := o
	cp.EndTime = cloneTimePtr(o.EndTime)
	cp.ActualDuration = cloneIntPtr(o.ActualDuration)
	cp.FuelConsumption = cloneFloatPtr(o.FuelConsumption)
	cp.Productivity = cloneFloatPtr(o.Productivity)
	return cp
}

func cloneOperations(in []models.Operation) []models.Operation {
	out := make([]models.Operation, len(in))
	for i, o := range in {
		out[i] = cloneOperation(o)
	}
	return out
}

func cloneMaintenanceOrder(m models.MaintenanceOrder) models.MaintenanceOrder {
	cp := m
	cp.StartedDate = cloneTimePtr(m.StartedDate)
	cp.CompletedDate = cloneTimePtr(m.CompletedDate)
	cp.PartsUsed = append([]models.PartUsed(nil), m.PartsUsed...)
	return cp
}

func cloneMaintenanceOrders(in []models.MaintenanceOrder) []models.MaintenanceOrder {
	out := make([]models.MaintenanceOrder, len(in))
	for i, m := range in {
		out[i] = cloneMaintenanceOrder(m)
	}
	return out
}

func cloneFuelSupply(f models.FuelSupply) models.FuelSupply { return f }

func cloneFuelSupplies(in []models.FuelSupply) []models.FuelSupply {
	out := make([]models.FuelSupply, len(in))
	for i, f := range in {
		out[i] = cloneFuelSupply(f)
	}
	return out
}

func cloneAlerts(in []models.Alert) []models.Alert {
	return append([]models.Alert(nil), in...)
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneIntPtr(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneFloatPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
