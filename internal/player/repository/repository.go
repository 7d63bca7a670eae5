package repository

import (
	"context"

	"roster-portal/internal/player/domain"
)

// Repository defines persistence for roster players.
type Repository interface {
	// GetByID returns the player or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Player, error)
	// Search returns up to limit players whose name or club matches query, ordered by last name.
	Search(ctx context.Context, query string, limit int) ([]*domain.Player, error)
	Create(ctx context.Context, p *domain.Player) error
}
