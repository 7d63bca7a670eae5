package repository

import (
	"context"
	"database/sql"
	"errors"

	"roster-portal/internal/otp/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an OTP challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the challenge. The challenge must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Challenge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_challenges (id, phone, purpose, code_hash, attempts, verified, consumed, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Phone, string(c.Purpose), c.CodeHash, c.Attempts, c.Verified, c.Consumed, c.ExpiresAt, c.CreatedAt,
	)
	return err
}

// GetLatest returns the most recent challenge for phone and purpose, or nil if none exists.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetLatest(ctx context.Context, phone string, purpose domain.Purpose) (*domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, phone, purpose, code_hash, attempts, verified, consumed, expires_at, created_at
		FROM otp_challenges
		WHERE phone = $1 AND purpose = $2
		ORDER BY created_at DESC
		LIMIT 1`, phone, string(purpose))
	var c domain.Challenge
	var p string
	err := row.Scan(&c.ID, &c.Phone, &p, &c.CodeHash, &c.Attempts, &c.Verified, &c.Consumed, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Purpose = domain.Purpose(p)
	return &c, nil
}

// IncrementAttempts records one failed verify attempt and returns the new count.
func (r *PostgresRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE otp_challenges SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`, id)
	var attempts int
	if err := row.Scan(&attempts); err != nil {
		return 0, err
	}
	return attempts, nil
}

// MarkVerified flags the challenge as successfully verified.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE otp_challenges SET verified = TRUE WHERE id = $1`, id)
	return err
}

// MarkConsumed flags the verified proof as used.
func (r *PostgresRepository) MarkConsumed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE otp_challenges SET consumed = TRUE WHERE id = $1`, id)
	return err
}

// InvalidateForPhone expires all open challenges for phone and purpose.
func (r *PostgresRepository) InvalidateForPhone(ctx context.Context, phone string, purpose domain.Purpose) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE otp_challenges SET expires_at = now()
		WHERE phone = $1 AND purpose = $2 AND NOT consumed AND expires_at > now()`,
		phone, string(purpose))
	return err
}
