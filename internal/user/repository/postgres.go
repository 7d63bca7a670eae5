package repository

import (
	"context"
	"database/sql"
	"errors"

	"roster-portal/internal/user/domain"
)

// ErrPlayerAlreadyAssigned is returned by SetPlayerID with onlyIfUnset when the
// account already has a bound player. The backend treats self-service binding
// as a one-time action per account.
var ErrPlayerAlreadyAssigned = errors.New("user already has a player assigned")

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, phone, phone_verified, first_name, last_name, password_hash, role, player_id, status, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByPhone returns the user with the given phone, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	playerID := sql.NullString{String: u.PlayerID, Valid: u.PlayerID != ""}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, phone, phone_verified, first_name, last_name, password_hash, role, player_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Phone, u.PhoneVerified, u.FirstName, u.LastName, u.PasswordHash,
		string(u.Role), playerID, string(u.Status), u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// UpdatePassword replaces the stored password hash for the user.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, passwordHash,
	)
	return err
}

// SetPlayerID binds the account to a roster player. With onlyIfUnset the update
// is conditional on player_id being NULL; zero rows affected then means the
// account was already bound and ErrPlayerAlreadyAssigned is returned.
func (r *PostgresRepository) SetPlayerID(ctx context.Context, userID, playerID string, onlyIfUnset bool) error {
	query := `UPDATE users SET player_id = $2, updated_at = now() WHERE id = $1`
	if onlyIfUnset {
		query += ` AND player_id IS NULL`
	}
	res, err := r.db.ExecContext(ctx, query, userID, playerID)
	if err != nil {
		return err
	}
	if onlyIfUnset {
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPlayerAlreadyAssigned
		}
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var playerID sql.NullString
	var role, status string
	err := row.Scan(&u.ID, &u.Phone, &u.PhoneVerified, &u.FirstName, &u.LastName,
		&u.PasswordHash, &role, &playerID, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	if playerID.Valid {
		u.PlayerID = playerID.String
	}
	return &u, nil
}
