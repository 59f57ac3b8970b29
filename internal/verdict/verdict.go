// Package verdict is the shared outcome type for code verification.
// Failure kinds are carried as a discriminated value; the user-facing message
// is a rendering concern so callers branch on Kind, never on substrings.
package verdict

import "fmt"

// Kind classifies the outcome of a verify call.
type Kind int

const (
	// NotFound means no record exists for the given key.
	NotFound Kind = iota
	// AlreadyUsed means the record was consumed by an earlier success or lockout.
	AlreadyUsed
	// Expired means the record's expiry has passed.
	Expired
	// TooManyAttempts means the attempt ceiling was exceeded; the record is dead.
	TooManyAttempts
	// Mismatch means the input did not match; Remaining tries are left.
	Mismatch
	// Success means the input matched and the record is now consumed.
	Success
)

// String returns the kind name for logs and metrics attributes.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case AlreadyUsed:
		return "already_used"
	case Expired:
		return "expired"
	case TooManyAttempts:
		return "too_many_attempts"
	case Mismatch:
		return "mismatch"
	case Success:
		return "success"
	}
	return "unknown"
}

// Result is the structured outcome of a verify call. Verification failures are
// values, never errors; errors are reserved for storage and infrastructure.
type Result struct {
	Kind      Kind
	Remaining int // valid only for Mismatch
}

// OK reports whether the verification succeeded.
func (r Result) OK() bool { return r.Kind == Success }

// Message renders the caller-visible text for the result. The wording is
// stable: existing callers display it verbatim.
func (r Result) Message() string {
	switch r.Kind {
	case NotFound:
		return "security code not found, please request a new one"
	case AlreadyUsed:
		return "security code already used, please request a new one"
	case Expired:
		return "security code expired, please request a new one"
	case TooManyAttempts:
		return "too many attempts, please request a new code"
	case Mismatch:
		return fmt.Sprintf("incorrect code, %d attempts remaining", r.Remaining)
	case Success:
		return "verification successful"
	}
	return "unknown verification result"
}
