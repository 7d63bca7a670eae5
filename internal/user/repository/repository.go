package repository

import (
	"context"

	"roster-portal/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdatePassword replaces the stored password hash (password-reset flow).
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	// SetPlayerID binds the account to a roster player. When onlyIfUnset is
	// true the update applies only when no player is bound yet; returns
	// ErrPlayerAlreadyAssigned otherwise (self-service one-time binding).
	SetPlayerID(ctx context.Context, userID, playerID string, onlyIfUnset bool) error
}
