package repository

import (
	"context"
	"time"

	"roster-portal/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	// RevokeAllSessionsByUser revokes every session for the user. Used on refresh-token reuse detection.
	RevokeAllSessionsByUser(ctx context.Context, userID string) error
	// UpdateRefreshToken stores the rotated refresh token's jti and hash on the session.
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}
