package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kickoff/fantasy/internal/domain"
)

const playerColumns = `id, name, position, price, points_history, last_3,
		points, goals_scored, assists, clean_sheets, created_at`

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

// List orders ids numerically when they are numeric strings ("2" before "10").
func (r *playerRepo) List(ctx context.Context, db DBTX) ([]domain.PlayerRecord, error) {
	rows, err := db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players
		ORDER BY length(id), id`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	return collectPlayers(rows)
}

func (r *playerRepo) FindByIDs(ctx context.Context, db DBTX, ids []string) ([]domain.PlayerRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query players by id: %w", err)
	}
	return collectPlayers(rows)
}

func (r *playerRepo) InsertIfAbsent(ctx context.Context, db DBTX, players []domain.Player) (int64, error) {
	var inserted int64
	for _, p := range players {
		p = domain.NormalizePlayer(p)
		tag, err := db.Exec(ctx, `
			INSERT INTO players (id, name, position, price, points_history, last_3,
			                     points, goals_scored, assists, clean_sheets)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.Position, p.Price, p.PointsHistory, p.Last3,
			p.Points, p.GoalsScored, p.Assists, p.CleanSheets,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert player %s: %w", p.ID, err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

func (r *playerRepo) Create(ctx context.Context, db DBTX, player domain.Player) (*domain.PlayerRecord, error) {
	p := domain.NormalizePlayer(player)
	row := db.QueryRow(ctx, `
		INSERT INTO players (id, name, position, price, points_history, last_3,
		                     points, goals_scored, assists, clean_sheets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
		RETURNING `+playerColumns,
		p.ID, p.Name, p.Position, p.Price, p.PointsHistory, p.Last3,
		p.Points, p.GoalsScored, p.Assists, p.CleanSheets,
	)
	rec, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func collectPlayers(rows pgx.Rows) ([]domain.PlayerRecord, error) {
	defer rows.Close()

	var out []domain.PlayerRecord
	for rows.Next() {
		rec, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanPlayer(row pgx.Row) (*domain.PlayerRecord, error) {
	var rec domain.PlayerRecord
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Position, &rec.Price, &rec.PointsHistory, &rec.Last3,
		&rec.Points, &rec.GoalsScored, &rec.Assists, &rec.CleanSheets, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return &rec, nil
}
