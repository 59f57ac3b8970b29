package domain

import "time"

// Record represents the active two-factor verification code for an email.
// At most one record exists per email: storing a new code replaces the old one.
type Record struct {
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Attempts  int
	IsUsed    bool
}

// Expired reports whether the record's expiry has passed at now.
func (r *Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Live reports whether the record can still be acted upon at now.
func (r *Record) Live(now time.Time) bool {
	return !r.IsUsed && !r.Expired(now)
}
