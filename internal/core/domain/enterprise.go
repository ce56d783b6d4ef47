package domain

import (
	"encoding/json"
	"time"
)

// QualificationStatus tracks the verification workflow of a demand enterprise.
type QualificationStatus string

const (
	QualificationUnverified QualificationStatus = "unverified"
	QualificationPending    QualificationStatus = "pending"
	QualificationVerified   QualificationStatus = "verified"
	QualificationRejected   QualificationStatus = "rejected"
)

// EnterpriseType says which side of the marketplace an enterprise is on.
type EnterpriseType string

const (
	EnterpriseDemand EnterpriseType = "demand"
	EnterpriseSupply EnterpriseType = "supply"
	EnterpriseBoth   EnterpriseType = "both"
)

// EnterpriseStatus is the account-level review state.
type EnterpriseStatus string

const (
	EnterprisePending   EnterpriseStatus = "pending"
	EnterpriseVerified  EnterpriseStatus = "verified"
	EnterpriseRejected  EnterpriseStatus = "rejected"
	EnterpriseSuspended EnterpriseStatus = "suspended"
)

// Enterprise is the subset of the marketplace enterprise record the portal
// reads. Raw keeps the full payload so drafts can be pre-seeded from it.
type Enterprise struct {
	ID                       EnterpriseID        `json:"id"`
	Name                     string              `json:"name"`
	EnterpriseType           EnterpriseType      `json:"enterprise_type"`
	Status                   EnterpriseStatus    `json:"status"`
	QualificationStatus      QualificationStatus `json:"qualification_status"`
	QualificationSubmittedAt *time.Time          `json:"qualification_submitted_at,omitempty"`
	CertificationLevel       string              `json:"certification_level,omitempty"`
	CreditScore              float64             `json:"credit_score,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// IsQualified reports whether the enterprise already passed qualification.
func (e *Enterprise) IsQualified() bool {
	return e.QualificationStatus == QualificationVerified
}

// DemandGate is the marketplace's answer to "may this enterprise publish a
// demand right now".
type DemandGate struct {
	CanCreate           bool                `json:"can_create"`
	Reason              string              `json:"reason"`
	QualificationStatus QualificationStatus `json:"qualification_status"`
}
