package vault

import "errors"

var (
	errNilState      = errors.New("vault engine: state not configured")
	errInvalidAmount = errors.New("vault engine: amount must not be negative")
	errNilAdapter    = errors.New("vault engine: adapter reference must not be nil")

	// ErrUnauthorized is returned when a caller fails the rebind capability
	// check. The prior binding stays in effect.
	ErrUnauthorized = errors.New("vault engine: caller not authorized to rebind adapter")
	// ErrPositionNotFound is returned when an operation names a position the
	// engine never opened.
	ErrPositionNotFound = errors.New("vault engine: position not found")
)

// AdapterFailureBlocked is the structured failure kind reported by adapters
// that refuse withdrawals outright.
const AdapterFailureBlocked = "Blocked"

// AdapterError is a structured failure reported by a reward adapter. The
// engine surfaces it to the trigger caller unwrapped so the kind remains
// observable through errors.As.
type AdapterError struct {
	Kind   string
	Detail string
}

func (e *AdapterError) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail == "" {
		return "reward adapter failure: " + e.Kind
	}
	return "reward adapter failure: " + e.Kind + ": " + e.Detail
}

// ErrWithdrawBlocked is the canonical structured withdrawal failure. Adapters
// that block unwinds return this exact value so callers can match identity.
var ErrWithdrawBlocked = &AdapterError{Kind: AdapterFailureBlocked}
