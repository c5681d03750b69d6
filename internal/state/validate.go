package state

import (
	"fmt"
	"strings"

	"github.com/frotadev/fleet-manager/internal/models"
)

// FieldError describes a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates the field-level failures of a rejected mutation.
// A rejected mutation leaves every collection untouched.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidationError reports whether err is a mutation validation failure.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

func (s fleetState) forkliftExists(id string) bool {
	for _, f := range s.forklifts {
		if f.ID == id {
			return true
		}
	}
	return false
}

func (s fleetState) operatorByID(id string) (models.Operator, bool) {
	for _, o := range s.operators {
		if o.ID == id {
			return o, true
		}
	}
	return models.Operator{}, false
}

// validateForklift checks a forklift about to be written. excludeID names the
// entity being updated so uniqueness checks skip its own row.
func (s fleetState) validateForklift(f models.Forklift, excludeID string) error {
	var verr ValidationError
	if f.ID == "" {
		verr.add("id", "must not be empty")
	}
	if f.Model == "" {
		verr.add("model", "must not be empty")
	}
	if !models.IsValidForkliftType(f.Type) {
		verr.add("type", fmt.Sprintf("unknown forklift type %q", f.Type))
	}
	if !models.IsValidForkliftStatus(f.Status) {
		verr.add("status", fmt.Sprintf("unknown forklift status %q", f.Status))
	}
	if f.Capacity <= 0 {
		verr.add("capacity", "must be positive")
	}
	if f.HourMeter < 0 {
		verr.add("hour_meter", "must not be negative")
	}
	if f.SerialNumber == "" {
		verr.add("serial_number", "must not be empty")
	}
	if f.Efficiency < 0 || f.Efficiency > 100 {
		verr.add("efficiency", "must be between 0 and 100")
	}
	if f.Availability < 0 || f.Availability > 100 {
		verr.add("availability", "must be between 0 and 100")
	}
	for _, other := range s.forklifts {
		if other.ID == excludeID {
			continue
		}
		if other.SerialNumber == f.SerialNumber && f.SerialNumber != "" {
			verr.add("serial_number", fmt.Sprintf("already used by forklift %s", other.ID))
		}
	}
	return verr.orNil()
}

func (s fleetState) validateOperator(o models.Operator, excludeID string) error {
	var verr ValidationError
	if o.ID == "" {
		verr.add("id", "must not be empty")
	}
	if o.Name == "" {
		verr.add("name", "must not be empty")
	}
	if o.TaxID == "" {
		verr.add("tax_id", "must not be empty")
	}
	if o.Email == "" {
		verr.add("email", "must not be empty")
	}
	if !models.IsValidOperatorRole(o.Role) {
		verr.add("role", fmt.Sprintf("unknown operator role %q", o.Role))
	}
	if !models.IsValidOperatorStatus(o.Status) {
		verr.add("status", fmt.Sprintf("unknown operator status %q", o.Status))
	}
	if o.WorkedHours < 0 {
		verr.add("worked_hours", "must not be negative")
	}
	if o.Productivity < 0 || o.Productivity > 100 {
		verr.add("productivity", "must be between 0 and 100")
	}
	for _, other := range s.operators {
		if other.ID == excludeID {
			continue
		}
		if other.TaxID == o.TaxID && o.TaxID != "" {
			verr.add("tax_id", fmt.Sprintf("already used by operator %s", other.ID))
		}
		if other.Email == o.Email && o.Email != "" {
			verr.add("email", fmt.Sprintf("already used by operator %s", other.ID))
		}
	}
	return verr.orNil()
}

func (s fleetState) validateOperation(op models.Operation, excludeID string) error {
	var verr ValidationError
	if op.ID == "" {
		verr.add("id", "must not be empty")
	}
	if !s.forkliftExists(op.ForkliftID) {
		verr.add("forklift_id", fmt.Sprintf("forklift %q not found", op.ForkliftID))
	}
	operator, ok := s.operatorByID(op.OperatorID)
	if !ok {
		verr.add("operator_id", fmt.Sprintf("operator %q not found", op.OperatorID))
	} else if operator.Status != models.OperatorActive {
		verr.add("operator_id", fmt.Sprintf("operator %q is not active", op.OperatorID))
	}
	if !models.IsValidOperationType(op.Type) {
		verr.add("type", fmt.Sprintf("unknown operation type %q", op.Type))
	}
	if !models.IsValidOperationStatus(op.Status) {
		verr.add("status", fmt.Sprintf("unknown operation status %q", op.Status))
	}
	if !models.IsValidPriority(op.Priority) {
		verr.add("priority", fmt.Sprintf("unknown priority %q", op.Priority))
	}
	if op.EstimatedDuration <= 0 {
		verr.add("estimated_duration", "must be positive")
	}
	if op.Status == models.OperationInProgress {
		for _, other := range s.operations {
			if other.ID == excludeID {
				continue
			}
			if other.ForkliftID == op.ForkliftID && other.Status == models.OperationInProgress {
				verr.add("forklift_id", fmt.Sprintf("forklift %q already has operation %s in progress", op.ForkliftID, other.ID))
			}
		}
	}
	return verr.orNil()
}

func (s fleetState) validateMaintenanceOrder(m models.MaintenanceOrder) error {
	var verr ValidationError
	if m.ID == "" {
		verr.add("id", "must not be empty")
	}
	if !s.forkliftExists(m.ForkliftID) {
		verr.add("forklift_id", fmt.Sprintf("forklift %q not found", m.ForkliftID))
	}
	if m.TechnicianID != "" {
		if _, ok := s.operatorByID(m.TechnicianID); !ok {
			verr.add("technician_id", fmt.Sprintf("operator %q not found", m.TechnicianID))
		}
	}
	if !models.IsValidMaintenanceType(m.Type) {
		verr.add("type", fmt.Sprintf("unknown maintenance type %q", m.Type))
	}
	if !models.IsValidMaintenanceStatus(m.Status) {
		verr.add("status", fmt.Sprintf("unknown maintenance status %q", m.Status))
	}
	if !models.IsValidPriority(m.Priority) {
		verr.add("priority", fmt.Sprintf("unknown priority %q", m.Priority))
	}
	if m.ProblemDescription == "" {
		verr.add("problem_description", "must not be empty")
	}
	if m.Status == models.MaintenanceCompleted && m.CompletedDate == nil {
		verr.add("completed_date", "required when status is completed")
	}
	return verr.orNil()
}

func (s fleetState) validateFuelSupply(f models.FuelSupply) error {
	var verr ValidationError
	if f.ID == "" {
		verr.add("id", "must not be empty")
	}
	if !s.forkliftExists(f.ForkliftID) {
		verr.add("forklift_id", fmt.Sprintf("forklift %q not found", f.ForkliftID))
	}
	if _, ok := s.operatorByID(f.OperatorID); !ok {
		verr.add("operator_id", fmt.Sprintf("operator %q not found", f.OperatorID))
	}
	if f.Liters <= 0 {
		verr.add("liters", "must be positive")
	}
	if f.PricePerLiter <= 0 {
		verr.add("price_per_liter", "must be positive")
	}
	if f.FinalHourMeter <= f.InitialHourMeter {
		verr.add("final_hour_meter", "must be greater than initial hour meter")
	}
	return verr.orNil()
}
