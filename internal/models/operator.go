package models

import (
	"time"
)

// OperatorStatus represents the employment state of an operator.
type OperatorStatus string

const (
	OperatorActive   OperatorStatus = "active"
	OperatorInactive OperatorStatus = "inactive"
	OperatorOnLeave  OperatorStatus = "on_leave"
	OperatorVacation OperatorStatus = "vacation"
)

// IsValidOperatorStatus checks if an operator status is valid.
func IsValidOperatorStatus(s OperatorStatus) bool {
	switch s {
	case OperatorActive, OperatorInactive, OperatorOnLeave, OperatorVacation:
		return true
	default:
		return false
	}
}

// OperatorRole represents the job function of an operator.
type OperatorRole string

const (
	RoleForkliftOperator OperatorRole = "operator"
	RoleSupervisor       OperatorRole = "supervisor"
	RoleTechnician       OperatorRole = "technician"
	RoleCoordinator      OperatorRole = "coordinator"
	RoleFleetManager     OperatorRole = "manager"
)

// IsValidOperatorRole checks if an operator role is valid.
func IsValidOperatorRole(r OperatorRole) bool {
	switch r {
	case RoleForkliftOperator, RoleSupervisor, RoleTechnician, RoleCoordinator, RoleFleetManager:
		return true
	default:
		return false
	}
}

// CertificationType represents the kind of certification held by an operator.
type CertificationType string

const (
	CertificationASO      CertificationType = "aso"
	CertificationNR11     CertificationType = "nr-11"
	CertificationTraining CertificationType = "training"
	CertificationLicense  CertificationType = "license"
)

// CertificationStatus represents the validity of a certification.
type CertificationStatus string

const (
	CertificationValid        CertificationStatus = "valid"
	CertificationExpiringSoon CertificationStatus = "expiring_soon"
	CertificationExpired      CertificationStatus = "expired"
)

// certificationExpiryWindow is the horizon within which a certification is
// reported as expiring soon.
const certificationExpiryWindow = 30 * 24 * time.Hour

// CertificationStatusAt derives the validity of a certification from its
// expiration date relative to now.
func CertificationStatusAt(expiration, now time.Time) CertificationStatus {
	switch {
	case expiration.Before(now):
		return CertificationExpired
	case expiration.Sub(now) < certificationExpiryWindow:
		return CertificationExpiringSoon
	default:
		return CertificationValid
	}
}

// Certification represents a certificate held by an operator.
type Certification struct {
	ID             string              `bson:"id" json:"id"`
	Type           CertificationType   `bson:"type" json:"type"`
	Number         string              `bson:"number" json:"number"`
	IssueDate      time.Time           `bson:"issue_date" json:"issue_date"`
	ExpirationDate time.Time           `bson:"expiration_date" json:"expiration_date"`
	Issuer         string              `bson:"issuer" json:"issuer"`
	Status         CertificationStatus `bson:"status" json:"status"`
}

// Evaluation represents a periodic performance review of an operator.
type Evaluation struct {
	ID        string    `bson:"id" json:"id"`
	Date      time.Time `bson:"date" json:"date"`
	Score     float64   `bson:"score" json:"score"`
	Evaluator string    `bson:"evaluator" json:"evaluator"`
	Comments  string    `bson:"comments" json:"comments"`
}

// Operator represents an equipment operator in the fleet.
type Operator struct {
	ID             string          `bson:"_id" json:"id"`
	Name           string          `bson:"name" json:"name"`
	TaxID          string          `bson:"tax_id" json:"tax_id"`
	Email          string          `bson:"email" json:"email"`
	Phone          string          `bson:"phone" json:"phone"`
	Role           OperatorRole    `bson:"role" json:"role"`
	AdmissionDate  time.Time       `bson:"admission_date" json:"admission_date"`
	Shift          string          `bson:"shift" json:"shift"`
	Sector         string          `bson:"sector" json:"sector"`
	Certifications []Certification `bson:"certifications" json:"certifications"`
	Evaluations    []Evaluation    `bson:"evaluations" json:"evaluations"`
	WorkedHours    float64         `bson:"worked_hours" json:"worked_hours"`
	Productivity   float64         `bson:"productivity" json:"productivity"` // %
	Status         OperatorStatus  `bson:"status" json:"status"`
}

// OperatorPatch lists the operator fields callers may change through the
// mutation API.
type OperatorPatch struct {
	Name           *string          `json:"name,omitempty"`
	TaxID          *string          `json:"tax_id,omitempty"`
	Email          *string          `json:"email,omitempty"`
	Phone          *string          `json:"phone,omitempty"`
	Role           *OperatorRole    `json:"role,omitempty"`
	Shift          *string          `json:"shift,omitempty"`
	Sector         *string          `json:"sector,omitempty"`
	Certifications *[]Certification `json:"certifications,omitempty"`
	Evaluations    *[]Evaluation    `json:"evaluations,omitempty"`
	WorkedHours    *float64         `json:"worked_hours,omitempty"`
	Productivity   *float64         `json:"productivity,omitempty"`
	Status         *OperatorStatus  `json:"status,omitempty"`
}

// Apply merges the patch into the operator.
func (p OperatorPatch) Apply(o *Operator) {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.TaxID != nil {
		o.TaxID = *p.TaxID
	}
	if p.Email != nil {
		o.Email = *p.Email
	}
	if p.Phone != nil {
		o.Phone = *p.Phone
	}
	if p.Role != nil {
		o.Role = *p.Role
	}
	if p.Shift != nil {
		o.Shift = *p.Shift
	}
	if p.Sector != nil {
		o.Sector = *p.Sector
	}
	if p.Certifications != nil {
		o.Certifications = append([]Certification(nil), (*p.Certifications)...)
	}
	if p.Evaluations != nil {
		o.Evaluations = append([]Evaluation(nil), (*p.Evaluations)...)
	}
	if p.WorkedHours != nil {
		o.WorkedHours = *p.WorkedHours
	}
	if p.Productivity != nil {
		o.Productivity = *p.Productivity
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
}
