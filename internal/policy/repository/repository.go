package repository

import (
	"context"

	"roster-portal/internal/policy/domain"
)

// Repository defines persistence for onboarding policies.
type Repository interface {
	// GetEnabledPolicies returns all enabled policies, newest first.
	GetEnabledPolicies(ctx context.Context) ([]*domain.Policy, error)
	Create(ctx context.Context, p *domain.Policy) error
}
