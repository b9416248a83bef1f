package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/repository"
)

type playerRepo struct{ s *Store }

func (r playerRepo) List(_ context.Context, _ repository.DBTX) ([]domain.PlayerRecord, error) {
	err := r.s.lock(OpPlayersList)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return sortedRecords(r.s.players), nil
}

func (r playerRepo) FindByIDs(_ context.Context, _ repository.DBTX, ids []string) ([]domain.PlayerRecord, error) {
	err := r.s.lock(OpPlayersFind)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(ids))
	var out []domain.PlayerRecord
	for _, id := range ids {
		if rec, ok := r.s.players[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r playerRepo) InsertIfAbsent(_ context.Context, _ repository.DBTX, players []domain.Player) (int64, error) {
	err := r.s.lock(OpPlayersInsert)
	defer r.s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	var inserted int64
	for _, p := range players {
		if _, ok := r.s.players[p.ID]; ok {
			continue
		}
		rec := domain.RecordOf(p)
		now := r.s.clock.Now()
		rec.CreatedAt = &now
		r.s.players[p.ID] = rec
		inserted++
	}
	return inserted, nil
}

func (r playerRepo) Create(_ context.Context, _ repository.DBTX, p domain.Player) (*domain.PlayerRecord, error) {
	err := r.s.lock(OpPlayersCreate)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, ok := r.s.players[p.ID]; ok {
		return nil, nil
	}
	rec := domain.RecordOf(p)
	now := r.s.clock.Now()
	rec.CreatedAt = &now
	r.s.players[p.ID] = rec
	return &rec, nil
}

type teamRepo struct{ s *Store }

func (r teamRepo) FindByUserID(_ context.Context, _ repository.DBTX, userID string) (*domain.Team, error) {
	err := r.s.lock(OpTeamsFind)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t, ok := r.s.teams[userID]
	if !ok {
		return nil, nil
	}
	return cloneTeam(t), nil
}

func (r teamRepo) Create(_ context.Context, _ repository.DBTX, userID string, playerIDs []string) (*domain.Team, error) {
	err := r.s.lock(OpTeamsCreate)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, ok := r.s.teams[userID]; ok {
		return nil, nil
	}
	now := r.s.clock.Now()
	t := domain.Team{
		ID:        uuid.New(),
		UserID:    userID,
		PlayerIDs: append([]string{}, playerIDs...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.teams[userID] = t
	return cloneTeam(t), nil
}

func (r teamRepo) ReplacePlayers(_ context.Context, _ repository.DBTX, userID string, playerIDs []string) (*domain.Team, error) {
	err := r.s.lock(OpTeamsReplace)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t, ok := r.s.teams[userID]
	if !ok {
		return nil, nil
	}
	t.PlayerIDs = append([]string{}, playerIDs...)
	t.UpdatedAt = r.s.clock.Now()
	r.s.teams[userID] = t
	return cloneTeam(t), nil
}

func cloneTeam(t domain.Team) *domain.Team {
	t.PlayerIDs = append([]string{}, t.PlayerIDs...)
	return &t
}

type userRepo struct{ s *Store }

func (r userRepo) FindByID(_ context.Context, _ repository.DBTX, id string) (*domain.User, error) {
	err := r.s.lock(OpUsersFind)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) CreateIfAbsent(_ context.Context, _ repository.DBTX, user domain.User) (*domain.User, error) {
	err := r.s.lock(OpUsersCreate)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, ok := r.s.users[user.ID]; ok {
		return nil, nil
	}
	user.CreatedAt = r.s.clock.Now()
	r.s.users[user.ID] = user
	return &user, nil
}

type outboxRepo struct{ s *Store }

func (r outboxRepo) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	err := r.s.lock(OpOutboxInsert)
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	r.s.seq++
	r.s.outbox = append(r.s.outbox, domain.OutboxRow{SeqID: r.s.seq, OutboxDraft: draft})
	return nil
}

// FetchUnpublished returns everything still in the outbox; MarkPublished removes rows.
func (r outboxRepo) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := min(limit, len(r.s.outbox))
	return append([]domain.OutboxRow(nil), r.s.outbox[:n]...), nil
}

func (r outboxRepo) MarkPublished(_ context.Context, _ repository.DBTX, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	done := make(map[int64]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	kept := r.s.outbox[:0]
	for _, row := range r.s.outbox {
		if !done[row.SeqID] {
			kept = append(kept, row)
		}
	}
	r.s.outbox = kept
	return nil
}

type attemptRepo struct{ s *Store }

func (r attemptRepo) Record(_ context.Context, _ repository.DBTX, email, ip string, success bool) error {
	err := r.s.lock(OpAttemptsRecord)
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	r.s.attempts = append(r.s.attempts, attempt{email: email, ip: ip, success: success, at: r.s.clock.Now()})
	return nil
}

func (r attemptRepo) CountFailuresSince(_ context.Context, _ repository.DBTX, email string, since time.Time) (int, error) {
	err := r.s.lock(OpAttemptsCount)
	defer r.s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, a := range r.s.attempts {
		if a.email == email && !a.success && a.at.After(since) {
			count++
		}
	}
	return count, nil
}
