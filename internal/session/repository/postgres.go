package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roster-portal/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, revoked_at, last_seen_at, ip_address, refresh_jti, refresh_token_hash, created_at
		FROM sessions WHERE id = $1`, id)
	var s domain.Session
	var revokedAt, lastSeenAt sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &revokedAt, &lastSeenAt,
		&s.IPAddress, &s.RefreshJti, &s.RefreshTokenHash, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		s.RevokedAt = &t
	}
	if lastSeenAt.Valid {
		t := lastSeenAt.Time
		s.LastSeenAt = &t
	}
	return &s, nil
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, ip_address, refresh_jti, refresh_token_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.ExpiresAt, s.IPAddress, s.RefreshJti, s.RefreshTokenHash, s.CreatedAt,
	)
	return err
}

// Revoke marks the session revoked. Idempotent: already-revoked sessions keep their original revoked_at.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	return err
}

// RevokeAllSessionsByUser revokes every active session for the user.
func (r *PostgresRepository) RevokeAllSessionsByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	return err
}

// UpdateRefreshToken stores the rotated refresh token's jti and hash.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET refresh_jti = $2, refresh_token_hash = $3 WHERE id = $1`,
		sessionID, jti, refreshTokenHash)
	return err
}

// UpdateLastSeen records session activity.
func (r *PostgresRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id, at)
	return err
}
