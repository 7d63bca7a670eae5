package repository

import (
	"context"
	"database/sql"
	"errors"

	"roster-portal/internal/player/domain"
)

const playerColumns = `id, first_name, last_name, club_name, jersey_number, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a player repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the player or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Search matches query case-insensitively against first name, last name and
// club name. Results are ordered by last name, then first name.
func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Player, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+playerColumns+` FROM players
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR club_name ILIKE $1
		ORDER BY last_name, first_name
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Create persists the player. The player must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Player) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (id, first_name, last_name, club_name, jersey_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.FirstName, p.LastName, p.ClubName, p.JerseyNumber, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.ClubName, &p.JerseyNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
