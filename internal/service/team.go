package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/repository"
)

// TeamService manages each user's single fantasy team.
type TeamService struct {
	db          repository.DBTX
	tx          repository.TxRunner
	teams       repository.TeamRepository
	players     repository.PlayerRepository
	outbox      repository.OutboxRepository
	logger      *slog.Logger
	strictReads bool
}

// NewTeamService creates a new TeamService. With strictReads, a failed team
// read is reported to the caller instead of being treated as "no team".
func NewTeamService(
	db repository.DBTX,
	tx repository.TxRunner,
	teams repository.TeamRepository,
	players repository.PlayerRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
	strictReads bool,
) *TeamService {
	return &TeamService{
		db:          db,
		tx:          tx,
		teams:       teams,
		players:     players,
		outbox:      outbox,
		logger:      logger,
		strictReads: strictReads,
	}
}

// Lookup reads and hydrates the user's team without collapsing failures.
func (s *TeamService) Lookup(ctx context.Context, userID string) domain.TeamLookup {
	team, err := s.teams.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.TeamLookup{State: domain.TeamLookupFailed, Err: err}
	}
	if team == nil {
		return domain.TeamLookup{State: domain.TeamAbsent}
	}
	view, err := s.hydrate(ctx, *team)
	if err != nil {
		return domain.TeamLookup{State: domain.TeamLookupFailed, Err: err}
	}
	return domain.TeamLookup{State: domain.TeamFound, View: view}
}

// GetTeam returns the user's hydrated team, or nil when the user has none.
func (s *TeamService) GetTeam(ctx context.Context, userID string) (*domain.TeamView, error) {
	res := s.Lookup(ctx, userID)
	switch res.State {
	case domain.TeamFound:
		return res.View, nil
	case domain.TeamLookupFailed:
		if s.strictReads {
			return nil, domain.ErrStoreUnavailable("get team", res.Err)
		}
		s.logger.Warn("team read failed, reporting no team", "user_id", userID, "error", res.Err)
		return nil, nil
	default:
		return nil, nil
	}
}

// CanCreate reports ErrTeamExists when the user already owns a team.
func (s *TeamService) CanCreate(ctx context.Context, userID string) error {
	existing, err := s.teams.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.ErrStoreUnavailable("check existing team", err)
	}
	if existing != nil {
		return domain.ErrTeamExists()
	}
	return nil
}

// CanUpdate reports NotFound when the user has no team to update.
func (s *TeamService) CanUpdate(ctx context.Context, userID string) error {
	existing, err := s.teams.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.ErrStoreUnavailable("check existing team", err)
	}
	if existing == nil {
		return domain.ErrNotFound("no team found for user")
	}
	return nil
}

// CreateTeam creates the user's team. A user can only ever have one.
func (s *TeamService) CreateTeam(ctx context.Context, userID string, playerIDs []string) (*domain.TeamView, error) {
	if err := s.CanCreate(ctx, userID); err != nil {
		return nil, err
	}

	ids := orEmpty(playerIDs)
	var created *domain.Team
	err := s.tx.InTx(ctx, func(db repository.DBTX) error {
		team, err := s.teams.Create(ctx, db, userID, ids)
		if err != nil {
			return err
		}
		if team == nil {
			// Lost a race with a concurrent create for the same user.
			return domain.ErrTeamExists()
		}
		created = team
		return s.outbox.Insert(ctx, db, domain.NewTeamEvent(domain.EventTeamCreated, *team))
	})
	if err != nil {
		return nil, storeError("create team", err)
	}

	s.logger.Info("team created", "user_id", userID, "team_id", created.ID, "players", len(ids))

	view, err := s.hydrate(ctx, *created)
	if err != nil {
		return nil, domain.ErrStoreUnavailable("load created team", err)
	}
	return view, nil
}

// UpdateTeam replaces the player ids of the user's existing team.
func (s *TeamService) UpdateTeam(ctx context.Context, userID string, playerIDs []string) (*domain.TeamView, error) {
	if err := s.CanUpdate(ctx, userID); err != nil {
		return nil, err
	}

	ids := orEmpty(playerIDs)
	var updated *domain.Team
	err := s.tx.InTx(ctx, func(db repository.DBTX) error {
		team, err := s.teams.ReplacePlayers(ctx, db, userID, ids)
		if err != nil {
			return err
		}
		if team == nil {
			return domain.ErrStoreInconsistent("team update affected no rows")
		}
		updated = team
		return s.outbox.Insert(ctx, db, domain.NewTeamEvent(domain.EventTeamUpdated, *team))
	})
	if err != nil {
		return nil, storeError("update team", err)
	}

	s.logger.Info("team updated", "user_id", userID, "team_id", updated.ID, "players", len(ids))

	view, err := s.hydrate(ctx, *updated)
	if err != nil {
		return nil, domain.ErrStoreUnavailable("load updated team", err)
	}
	return view, nil
}

func (s *TeamService) hydrate(ctx context.Context, team domain.Team) (*domain.TeamView, error) {
	records, err := s.players.FindByIDs(ctx, s.db, team.PlayerIDs)
	if err != nil {
		return nil, fmt.Errorf("hydrate team players: %w", err)
	}
	view := domain.Hydrate(team, domain.NormalizeRecords(records))
	return &view, nil
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
