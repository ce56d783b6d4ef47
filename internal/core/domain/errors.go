package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrEnterpriseNotFound = errors.New("enterprise not found")
	ErrNoEnterprise       = errors.New("session has no associated enterprise")
	ErrAlreadyVerified    = errors.New("enterprise qualification already verified")

	// ErrMarketplaceUnavailable wraps transport failures talking to the
	// marketplace API.
	ErrMarketplaceUnavailable = errors.New("marketplace unavailable")
)

var (
	ErrWizardNotFound             = errors.New("wizard not found")
	ErrNoWizardForRole            = errors.New("no wizard available for this role")
	ErrIllegalTransition          = errors.New("illegal wizard transition")
	ErrCompletenessBelowThreshold = errors.New("completeness below submission threshold")
	ErrSubmissionInFlight         = errors.New("submission already in progress")
	ErrWizardClosed               = errors.New("wizard is closed")
	ErrUnknownGroup               = errors.New("unknown repeatable group")
	ErrEntryIndexOutOfRange       = errors.New("entry index out of range")
)

// ValidationError carries field-level messages keyed by draft field path,
// e.g. "credit_code" or "capability_details[1].tech_stack".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// APIError is a non-401 failure returned by the marketplace API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("marketplace api: status %d", e.Status)
	}
	return fmt.Sprintf("marketplace api: status %d: %s", e.Status, e.Message)
}
