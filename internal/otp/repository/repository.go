package repository

import (
	"context"

	"roster-portal/internal/otp/domain"
)

// Repository defines persistence for OTP challenges.
type Repository interface {
	Create(ctx context.Context, c *domain.Challenge) error
	// GetLatest returns the most recent challenge for phone and purpose, or nil if none exists.
	GetLatest(ctx context.Context, phone string, purpose domain.Purpose) (*domain.Challenge, error)
	// IncrementAttempts records one failed verify attempt and returns the new count.
	IncrementAttempts(ctx context.Context, id string) (int, error)
	// MarkVerified flags the challenge as successfully verified.
	MarkVerified(ctx context.Context, id string) error
	// MarkConsumed flags the verified proof as used so it cannot authorize twice.
	MarkConsumed(ctx context.Context, id string) error
	// InvalidateForPhone expires all open challenges for phone and purpose.
	// Called before a resend so superseded codes no longer verify.
	InvalidateForPhone(ctx context.Context, phone string, purpose domain.Purpose) error
}
