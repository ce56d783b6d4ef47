package handler

import (
	"encoding/json"

	"github.com/aimatch/portal/internal/core/wizard"
)

// ErrorResponse is the error envelope of every API failure.
type ErrorResponse struct {
	Error string `json:"error"`
	// Fields maps draft or request field paths to messages on 422.
	Fields map[string]string `json:"fields,omitempty"`
	// Redirect is set on 401: the session is gone and the UI must log in.
	Redirect string `json:"redirect,omitempty"`
	// Retryable marks marketplace failures that may succeed on retry.
	Retryable bool `json:"retryable,omitempty"`
}

// valuesRequest carries the field values entered on the current step.
// Keys are draft JSON field names; an empty body means "no changes".
type valuesRequest struct {
	Values wizard.Values `json:"values"`
}

type entryRequest struct {
	Entry json.RawMessage `json:"entry"`
}
