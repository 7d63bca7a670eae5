// Package rbac holds authorization guards shared by handlers.
package rbac

import (
	"context"
	"errors"

	"roster-portal/internal/server/middleware"
	"roster-portal/internal/user/domain"
)

// Guard errors; handlers map them to 401/403.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin role required")
)

// UserGetter resolves a user by ID. Used by RequireAdmin to check the caller's role.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// RequireAdmin ensures the caller is authenticated and has the admin role.
// Returns the caller's user ID on success.
func RequireAdmin(ctx context.Context, getter UserGetter) (userID string, err error) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok || userID == "" {
		return "", ErrUnauthenticated
	}
	u, err := getter.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil || u.Status != domain.UserStatusActive {
		return "", ErrUnauthenticated
	}
	if u.Role != domain.RoleAdmin {
		return "", ErrForbidden
	}
	return userID, nil
}
