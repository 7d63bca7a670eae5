package domain

import "time"

// Session represents an authenticated login session.
type Session struct {
	ID               string
	UserID           string
	ExpiresAt        time.Time
	RevokedAt        *time.Time // nil when not revoked
	LastSeenAt       *time.Time
	IPAddress        string
	RefreshJti       string // current refresh token jti for rotation; empty if not set
	RefreshTokenHash string // SHA-256 hash of current refresh token
	CreatedAt        time.Time
}

// Active reports whether the session is usable at the given time.
func (s *Session) Active(at time.Time) bool {
	if s == nil || s.RevokedAt != nil {
		return false
	}
	return s.ExpiresAt.After(at)
}
