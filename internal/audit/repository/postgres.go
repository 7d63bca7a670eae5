package repository

import (
	"context"
	"database/sql"

	"roster-portal/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns audit entries newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, resource, ip, metadata, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var userID, metadata sql.NullString
		if err := rows.Scan(&a.ID, &userID, &a.Action, &a.Resource, &a.IP, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.UserID = userID.String
		a.Metadata = metadata.String
		entries = append(entries, &a)
	}
	return entries, rows.Err()
}

// Create persists the audit entry.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, action, resource, ip, metadata, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, NULLIF($6, ''), $7)`,
		a.ID, a.UserID, a.Action, a.Resource, a.IP, a.Metadata, a.CreatedAt,
	)
	return err
}
