package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kickoff/fantasy/internal/domain"
)

// PgUserRepository implements UserRepository using pgx.
type PgUserRepository struct{}

// NewPgUserRepository creates a new PgUserRepository.
func NewPgUserRepository() *PgUserRepository {
	return &PgUserRepository{}
}

// FindByID returns a user by id, or nil if not found.
func (r *PgUserRepository) FindByID(ctx context.Context, db DBTX, id string) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT id, full_name, username, role, created_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateIfAbsent inserts the user unless the id already exists.
func (r *PgUserRepository) CreateIfAbsent(ctx context.Context, db DBTX, user domain.User) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO users (id, full_name, username, role) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING id, full_name, username, role, created_at`,
		user.ID, user.FullName, user.Username, user.Role)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
