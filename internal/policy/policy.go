// Package policy decides whether an email address must complete two-factor
// verification.
//
// The rules are deliberately coarse substring checks carried over from the
// original flow: the institutional domain suffix, or "admin"/"instructor"
// anywhere in the local part. This matches unrelated addresses too (e.g.
// "badminton@x.com"); do not tighten it here — a real role lookup belongs in
// an external identity service.
package policy

import "strings"

// DefaultInstitutionSuffix is the institutional email domain suffix.
const DefaultInstitutionSuffix = "@institution.edu"

// Evaluator answers the "is verification required" predicate.
type Evaluator interface {
	Required(email string) bool
}

// Substring is the literal substring-based policy.
type Substring struct {
	InstitutionSuffix string
}

// NewSubstring returns the substring policy. suffix "" uses
// DefaultInstitutionSuffix; a suffix without a leading "@" gets one.
func NewSubstring(suffix string) *Substring {
	if suffix == "" {
		suffix = DefaultInstitutionSuffix
	}
	if !strings.HasPrefix(suffix, "@") {
		suffix = "@" + suffix
	}
	return &Substring{InstitutionSuffix: suffix}
}

// Required reports whether email must complete verification: institutional
// domain suffix, or local part containing "admin" or "instructor".
func (p *Substring) Required(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if strings.HasSuffix(email, strings.ToLower(p.InstitutionSuffix)) {
		return true
	}
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	return strings.Contains(local, "admin") || strings.Contains(local, "instructor")
}
