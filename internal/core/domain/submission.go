package domain

import "time"

// WizardKind identifies a stepped-form variant.
type WizardKind string

const (
	WizardNone                WizardKind = ""
	WizardDemandQualification WizardKind = "demand_qualification"
	WizardSupplyRegistration  WizardKind = "supply_registration"
)

// SubmissionOutcome is the result of one Submit attempt.
type SubmissionOutcome string

const (
	OutcomeSubmitted SubmissionOutcome = "submitted"
	OutcomeBlocked   SubmissionOutcome = "blocked"
	OutcomeInvalid   SubmissionOutcome = "invalid"
	OutcomeFailed    SubmissionOutcome = "failed"
	OutcomeStale     SubmissionOutcome = "stale"
)

// SubmissionRecord is the audit entry written for every Submit attempt.
type SubmissionRecord struct {
	WizardID     string            `json:"wizard_id"     bson:"wizard_id"`
	Kind         WizardKind        `json:"kind"          bson:"kind"`
	SessionID    string            `json:"session_id"    bson:"session_id"`
	UserID       int64             `json:"user_id"       bson:"user_id"`
	EnterpriseID EnterpriseID      `json:"enterprise_id" bson:"enterprise_id,omitempty"`
	Completeness int               `json:"completeness"  bson:"completeness"`
	Outcome      SubmissionOutcome `json:"outcome"       bson:"outcome"`
	Error        string            `json:"error,omitempty" bson:"error,omitempty"`
	At           time.Time         `json:"at"            bson:"at"`
}
