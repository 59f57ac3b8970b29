package domain

import "time"

// Actions recorded by the security-code services.
const (
	ActionChallengeCreated    = "challenge.created"
	ActionChallengeRefreshed  = "challenge.refreshed"
	ActionChallengeVerified   = "challenge.verified"
	ActionChallengeLocked     = "challenge.locked"
	ActionVerificationIssued  = "verification.issued"
	ActionVerificationSent    = "verification.dispatched"
	ActionVerificationDone    = "verification.verified"
	ActionVerificationLocked  = "verification.locked"
	ActionExpiredCleanup      = "cleanup.expired"
)

// Event is one audit log entry. Subject is the record key (challenge id or
// email); code values are never stored here.
type Event struct {
	ID        string
	Action    string
	Subject   string
	Metadata  string
	CreatedAt time.Time
}
