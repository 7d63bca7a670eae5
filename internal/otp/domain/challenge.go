package domain

import "time"

// Purpose distinguishes what a challenge proves once verified.
type Purpose string

const (
	// PurposeRegister gates new-account creation.
	PurposeRegister Purpose = "register"
	// PurposeReset gates password reset for an existing account.
	PurposeReset Purpose = "reset"
)

// Challenge represents a one-time code sent to a phone (stored in otp_challenges).
// A resend issues a fresh Challenge; the superseded row is invalidated so the
// old code can no longer verify.
type Challenge struct {
	ID        string
	Phone     string
	Purpose   Purpose
	CodeHash  string
	Attempts  int  // failed verify attempts against this challenge
	Verified  bool // set on successful code check; gates register/reset
	Consumed  bool // set when the verified proof has been used
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the challenge is past its lifetime at the given time.
func (c *Challenge) Expired(at time.Time) bool {
	return c == nil || !c.ExpiresAt.After(at)
}
