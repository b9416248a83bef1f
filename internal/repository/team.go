package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kickoff/fantasy/internal/domain"
)

type teamRepo struct{}

// NewTeamRepository returns a pgx-backed TeamRepository.
func NewTeamRepository() TeamRepository {
	return &teamRepo{}
}

func (r *teamRepo) FindByUserID(ctx context.Context, db DBTX, userID string) (*domain.Team, error) {
	row := db.QueryRow(ctx, `
		SELECT id, user_id, player_ids, created_at, updated_at
		FROM user_teams WHERE user_id = $1`, userID)
	return scanTeam(row)
}

// Create relies on the unique index on user_id: a concurrent insert for the
// same user returns no row instead of a second team.
func (r *teamRepo) Create(ctx context.Context, db DBTX, userID string, playerIDs []string) (*domain.Team, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO user_teams (user_id, player_ids)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, player_ids, created_at, updated_at`,
		userID, nonNil(playerIDs))
	return scanTeam(row)
}

func (r *teamRepo) ReplacePlayers(ctx context.Context, db DBTX, userID string, playerIDs []string) (*domain.Team, error) {
	row := db.QueryRow(ctx, `
		UPDATE user_teams SET player_ids = $2, updated_at = now()
		WHERE user_id = $1
		RETURNING id, user_id, player_ids, created_at, updated_at`,
		userID, nonNil(playerIDs))
	return scanTeam(row)
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	err := row.Scan(&t.ID, &t.UserID, &t.PlayerIDs, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan team: %w", err)
	}
	if t.PlayerIDs == nil {
		t.PlayerIDs = []string{}
	}
	return &t, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
