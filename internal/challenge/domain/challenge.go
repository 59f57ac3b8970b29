package domain

import "time"

// Challenge represents one issued numeric security challenge, keyed by ID.
// Answer is the 6-digit comparison value; Display is the human-presentable
// rendering derived from it.
type Challenge struct {
	ID        string
	Answer    string
	Display   string
	CreatedAt time.Time
	ExpiresAt time.Time
	Attempts  int
	IsUsed    bool
}

// Expired reports whether the challenge's expiry has passed at now.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Live reports whether the challenge can still be acted upon at now.
func (c *Challenge) Live(now time.Time) bool {
	return !c.IsUsed && !c.Expired(now)
}
