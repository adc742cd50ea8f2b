package models

// OutcomeKind classifies one completed provider request
type OutcomeKind int

const (
	// OutcomeSuccess is a 200 with a usable body
	OutcomeSuccess OutcomeKind = iota

	// OutcomeEmpty is a 200 without usable data (bogon, placeholder body)
	OutcomeEmpty

	// OutcomeRateLimited is a 429 from the provider
	OutcomeRateLimited

	// OutcomeTransportError is a DNS/TLS/connect/timeout failure
	OutcomeTransportError

	// OutcomeUnexpectedStatus is any other non-200 status
	OutcomeUnexpectedStatus
)

// String returns the label used in logs and metrics
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeUnexpectedStatus:
		return "unexpected_status"
	default:
		return "unknown"
	}
}

// Fatal reports whether this kind aborts the whole batch
func (k OutcomeKind) Fatal() bool {
	return k == OutcomeRateLimited || k == OutcomeTransportError
}

// Outcome is the classified result of one provider request
// Only the fields relevant to Kind are populated
type Outcome struct {
	Kind       OutcomeKind
	Identifier Identifier
	StatusCode int            // Set for every kind except OutcomeTransportError
	Body       map[string]any // Decoded JSON object, may be nil
	Err        error          // Set for OutcomeTransportError
}
