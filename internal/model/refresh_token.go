package model

import "time"

// RefreshToken is one issued long-lived credential. Rows are created and
// deleted, never updated.
type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time

	// User is populated by lookups that join the owner.
	User *User
}

// Expired reports whether the stored expiry lies before now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
