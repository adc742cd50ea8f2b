package models

import "fmt"

// Identifier is one candidate address handed to the enrichment core
// The private flag comes from the caller and is never recomputed here
type Identifier struct {
	Value       string `json:"value" validate:"required"` // String form of the address
	IsIPv6      bool   `json:"isIPv6"`                    // Address family hint from the caller
	IsPrivateIP bool   `json:"isPrivateIP"`               // Set by the host environment
}

// LookupOptions carries the per-call provider settings
type LookupOptions struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

// LookupRequest is the body of POST /v1/lookup
type LookupRequest struct {
	Entities []Identifier  `json:"entities" validate:"required,max=1000,dive"`
	Options  LookupOptions `json:"options" validate:"-"` // checked separately, after the default token is applied
}

// SummaryRecord is the reduced view of one provider response
// Details is the raw body (plus side fields), nil for empty rows
type SummaryRecord struct {
	Summary []string       `json:"summary"`
	Details map[string]any `json:"details"`
}

// Result pairs an eligible identifier with its enrichment data
// Data is nil when the provider had nothing usable for the address
type Result struct {
	Entity Identifier     `json:"entity"`
	Data   *SummaryRecord `json:"data"`
}

// BatchError is returned when a single outcome invalidates the whole batch
// (rate limit or transport failure)
type BatchError struct {
	Message    string `json:"error"`
	Detail     string `json:"detail"`
	Entity     string `json:"entity"`
	HTTPStatus int    `json:"httpStatus,omitempty"`

	Err error `json:"-"` // Underlying transport error, if any
}

func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (entity %s): %v", e.Message, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s (entity %s)", e.Message, e.Entity)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// OptionError describes one invalid option value
type OptionError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
}
