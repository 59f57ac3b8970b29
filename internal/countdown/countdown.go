// Package countdown computes the client-facing expiry countdown for issued
// codes and the retry hint attached to verification outcomes.
package countdown

import (
	"time"

	"security-code-service/internal/verdict"
)

// Remaining returns the whole seconds left until expiresAt, clamped at zero.
// Partial seconds round up so the countdown never reads zero while the code
// is still live.
func Remaining(now, expiresAt time.Time) int64 {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// ShouldRefresh reports whether the outcome means the current code is dead
// and the caller needs a fresh one rather than another attempt.
func ShouldRefresh(kind verdict.Kind) bool {
	switch kind {
	case verdict.Expired, verdict.TooManyAttempts, verdict.AlreadyUsed:
		return true
	}
	return false
}
