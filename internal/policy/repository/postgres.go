package repository

import (
	"context"
	"database/sql"

	"roster-portal/internal/policy/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a policy repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetEnabledPolicies returns all enabled policies, newest first.
func (r *PostgresRepository) GetEnabledPolicies(ctx context.Context) ([]*domain.Policy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, rego, enabled, created_at, updated_at
		FROM onboarding_policies
		WHERE enabled
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*domain.Policy
	for rows.Next() {
		var p domain.Policy
		if err := rows.Scan(&p.ID, &p.Rego, &p.Enabled, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		policies = append(policies, &p)
	}
	return policies, rows.Err()
}

// Create persists the policy. The policy must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Policy) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO onboarding_policies (id, rego, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Rego, p.Enabled, p.CreatedAt, p.UpdatedAt,
	)
	return err
}
