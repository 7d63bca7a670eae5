// Package flow implements the phone-first onboarding wizard: phone
// identification, login or OTP verification, registration, and player
// assignment, as a single orchestrated state machine over the auth and player
// services.
package flow

import (
	"context"
	"errors"
	"time"
)

// Failure classes the controller maps to stage-local field errors. The client
// adapter translates service errors into these.
var (
	ErrUnauthorized = errors.New("invalid credentials")
	ErrRateLimited  = errors.New("rate limited")
	ErrCodeInvalid  = errors.New("code invalid")
	ErrCodeExpired  = errors.New("code expired")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrRequestPending is returned when a submit arrives while another
	// mutating request for the same stage is in flight. The duplicate submit
	// is a no-op.
	ErrRequestPending = errors.New("request already pending")
	// ErrFlowClosed is returned after Close; late responses no longer mutate state.
	ErrFlowClosed = errors.New("flow is closed")
	// ErrWrongStage is returned when an operation does not belong to the
	// active stage.
	ErrWrongStage = errors.New("operation not valid in current stage")
)

// Identity is the read-mostly context shared by the stages. Created when the
// phone stage submits successfully; discarded when the flow completes or is
// abandoned.
type Identity struct {
	Phone               string
	Verified            bool
	Exists              bool
	HasPlayerAssignment bool
}

// OtpChallenge tracks the open SMS challenge. A resend replaces it.
type OtpChallenge struct {
	IssuedAt        time.Time
	CooldownSeconds int
}

// PlayerAssignment holds the picker selection until it is confirmed.
type PlayerAssignment struct {
	CandidatePlayerID string
	Confirmed         bool
}

// Player is one roster search result.
type Player struct {
	ID           string
	FullName     string
	ClubName     string
	JerseyNumber int
}

// CheckResult is the outcome of the username check.
type CheckResult struct {
	Exists              bool
	HasPlayerAssignment bool
}

// Client is the auth/user service surface the wizard consumes. Implementations
// must return the package's sentinel failure classes for expected business
// failures; anything else is treated as an unexpected transport error.
type Client interface {
	CheckUsername(ctx context.Context, phone string) (*CheckResult, error)
	// Login and Register return the authenticated user's ID; the controller
	// carries it through the checkpoint so player assignment still works
	// after the final-redirect resume.
	Login(ctx context.Context, phone, password string) (userID string, err error)
	SendRegistrationCode(ctx context.Context, phone string) error
	// VerifyCode checks the submitted code server-side. The code is never
	// compared locally.
	VerifyCode(ctx context.Context, phone, code string) error
	Register(ctx context.Context, phone, password, code, firstName, lastName string) (userID string, err error)
	SendPasswordResetCode(ctx context.Context, phone string) error
	VerifyResetCode(ctx context.Context, phone, code, newPassword string) error
	SearchPlayers(ctx context.Context, query string) ([]Player, error)
	SetPlayerID(ctx context.Context, userID, playerID string) error
}
