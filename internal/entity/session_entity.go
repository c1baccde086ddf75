package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is the local, time-bounded authentication state. The token is a
// self-issued JWT: structurally real (header.payload.signature) but signed
// with a local config secret, so it simulates a trust boundary rather than
// enforcing one.
type Session struct {
	Id             string
	User           UserProfile
	Token          string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	LastActivityAt time.Time

	// Expiring is an overlay flag raised near the inactivity deadline.
	// It warns; it never gates.
	Expiring bool
}

// UserProfile is the opaque profile snapshot carried inside a session.
type UserProfile struct {
	Id       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}

// Valid reports whether the session is alive at now: the token's absolute
// deadline must not have passed AND the inactivity window must not be
// exhausted. Both clocks are independent and both must hold.
func (s *Session) Valid(now time.Time, inactivityWindow time.Duration) bool {
	if !now.Before(s.ExpiresAt) {
		return false
	}
	return now.Sub(s.LastActivityAt) < inactivityWindow
}

// TimeUntilExpiry is how long the session survives with no further activity.
func (s *Session) TimeUntilExpiry(now time.Time, inactivityWindow time.Duration) time.Duration {
	byInactivity := inactivityWindow - now.Sub(s.LastActivityAt)
	byToken := s.ExpiresAt.Sub(now)
	if byToken < byInactivity {
		return byToken
	}
	return byInactivity
}
