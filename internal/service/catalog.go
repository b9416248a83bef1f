package service

import (
	"context"
	"log/slog"

	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/repository"
)

// CatalogService serves the player catalog and seeds it on first use.
type CatalogService struct {
	db      repository.DBTX
	tx      repository.TxRunner
	players repository.PlayerRepository
	outbox  repository.OutboxRepository
	logger  *slog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	db repository.DBTX,
	tx repository.TxRunner,
	players repository.PlayerRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{db: db, tx: tx, players: players, outbox: outbox, logger: logger}
}

// ListPlayers returns every player in catalog order. An empty catalog is
// seeded with the sample roster, which is returned as written.
func (s *CatalogService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	records, err := s.players.List(ctx, s.db)
	if err != nil {
		return nil, domain.ErrStoreUnavailable("list players", err)
	}
	if len(records) > 0 {
		return domain.NormalizeRecords(records), nil
	}

	sample, _, err := s.Seed(ctx)
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// Seed inserts any sample players not already present and reports how many were new.
// Safe to call concurrently and repeatedly.
func (s *CatalogService) Seed(ctx context.Context) ([]domain.Player, int64, error) {
	sample, err := SamplePlayers()
	if err != nil {
		return nil, 0, domain.ErrInternal("load sample roster", err)
	}

	var inserted int64
	err = s.tx.InTx(ctx, func(db repository.DBTX) error {
		n, err := s.players.InsertIfAbsent(ctx, db, sample)
		if err != nil {
			return err
		}
		inserted = n
		if n == 0 {
			return nil
		}
		ids := make([]string, len(sample))
		for i, p := range sample {
			ids[i] = p.ID
		}
		return s.outbox.Insert(ctx, db, domain.NewCatalogSeededEvent(n, ids))
	})
	if err != nil {
		return nil, 0, storeError("seed players", err)
	}

	if inserted > 0 {
		s.logger.Info("player catalog seeded", "inserted", inserted, "roster_size", len(sample))
	}
	return sample, inserted, nil
}

// AddPlayer registers a new catalog player. Only admins may call it.
func (s *CatalogService) AddPlayer(ctx context.Context, identity *domain.Identity, player domain.Player) (*domain.Player, error) {
	if identity == nil || !identity.IsAdmin {
		return nil, domain.ErrForbidden("not authorized")
	}

	player = domain.NormalizePlayer(player)
	player.CreatedAt = nil
	if err := domain.ValidatePlayer(player); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	var stored *domain.PlayerRecord
	err := s.tx.InTx(ctx, func(db repository.DBTX) error {
		rec, err := s.players.Create(ctx, db, player)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrConflict("player " + player.ID + " already exists")
		}
		stored = rec
		return s.outbox.Insert(ctx, db, domain.NewPlayerRegisteredEvent(player, identity.ID))
	})
	if err != nil {
		return nil, storeError("add player", err)
	}

	out := stored.Normalize()
	s.logger.Info("player registered", "player_id", out.ID, "registered_by", identity.ID)
	return &out, nil
}
