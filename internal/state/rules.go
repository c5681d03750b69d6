package state

import (
	"time"

	"github.com/frotadev/fleet-manager/internal/models"
)

// Cross-entity consistency rules. Each rule keeps denormalized forklift
// fields aligned with the lifecycle of the operations and maintenance orders
// referencing the forklift. All rules are idempotent, and a rule whose target
// forklift no longer exists (a cascading delete within the same mutation) is
// skipped silently.

func (s *fleetState) forkliftIndex(id string) int {
	for i := range s.forklifts {
		if s.forklifts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *fleetState) operationIndex(id string) int {
	for i := range s.operations {
		if s.operations[i].ID == id {
			return i
		}
	}
	return -1
}

// applyOperationRules reconciles the referenced forklift with an operation
// that was just written, and derives ActualDuration on completion.
func (s *fleetState) applyOperationRules(opIndex int) {
	op := &s.operations[opIndex]

	if op.Status == models.OperationCompleted && op.EndTime != nil && op.ActualDuration == nil {
		minutes := int(op.EndTime.Sub(op.StartTime) / time.Minute)
		op.ActualDuration = &minutes
	}

	fi := s.forkliftIndex(op.ForkliftID)
	if fi < 0 {
		return
	}
	switch op.Status {
	case models.OperationInProgress:
		s.forklifts[fi].CurrentOperatorID = op.OperatorID
	case models.OperationCompleted:
		s.forklifts[fi].CurrentOperatorID = ""
	}
}

// applyMaintenanceRules couples the referenced forklift's status to the
// maintenance order lifecycle.
func (s *fleetState) applyMaintenanceRules(order models.MaintenanceOrder) {
	fi := s.forkliftIndex(order.ForkliftID)
	if fi < 0 {
		return
	}
	switch order.Status {
	case models.MaintenanceOpen, models.MaintenanceInProgress:
		s.forklifts[fi].Status = models.ForkliftUnderMaintenance
	case models.MaintenanceCompleted:
		s.forklifts[fi].Status = models.ForkliftOperational
	}
}
