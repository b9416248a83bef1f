// Package memstore is an in-memory implementation of the repository
// interfaces with per-operation fault injection. Services and handlers are
// tested against it; it ignores the DBTX argument.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/repository"
)

// Op names a repository operation that can be made to fail.
type Op string

const (
	OpPlayersList    Op = "players.list"
	OpPlayersFind    Op = "players.find"
	OpPlayersInsert  Op = "players.insert"
	OpPlayersCreate  Op = "players.create"
	OpTeamsFind      Op = "teams.find"
	OpTeamsCreate    Op = "teams.create"
	OpTeamsReplace   Op = "teams.replace"
	OpUsersFind      Op = "users.find"
	OpUsersCreate    Op = "users.create"
	OpOutboxInsert   Op = "outbox.insert"
	OpAttemptsRecord Op = "attempts.record"
	OpAttemptsCount  Op = "attempts.count"
)

type attempt struct {
	email   string
	ip      string
	success bool
	at      time.Time
}

// Store holds every table in memory.
type Store struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	players  map[string]domain.PlayerRecord
	teams    map[string]domain.Team
	users    map[string]domain.User
	outbox   []domain.OutboxRow
	attempts []attempt
	failures map[Op]error
	seq      int64
}

// New creates an empty store. A nil clock uses the real clock.
func New(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		clock:    clock,
		players:  make(map[string]domain.PlayerRecord),
		teams:    make(map[string]domain.Team),
		users:    make(map[string]domain.User),
		failures: make(map[Op]error),
	}
}

// Fail makes every call of op return err until Recover is called.
func (s *Store) Fail(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Recover clears an injected failure.
func (s *Store) Recover(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

// PutPlayer stores a raw record as-is, including nil optional fields.
func (s *Store) PutPlayer(rec domain.PlayerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[rec.ID] = rec
}

// PlayerCount returns the number of stored players.
func (s *Store) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// TeamCount returns the number of stored teams.
func (s *Store) TeamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.teams)
}

// UserCount returns the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Events returns a copy of the outbox.
func (s *Store) Events() []domain.OutboxRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxRow(nil), s.outbox...)
}

// InTx runs fn without isolation; changes made before an error are kept.
func (s *Store) InTx(_ context.Context, fn func(db repository.DBTX) error) error {
	return fn(nil)
}

// Players returns the PlayerRepository view of the store.
func (s *Store) Players() repository.PlayerRepository { return playerRepo{s} }

// Teams returns the TeamRepository view of the store.
func (s *Store) Teams() repository.TeamRepository { return teamRepo{s} }

// Users returns the UserRepository view of the store.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Outbox returns the OutboxRepository view of the store.
func (s *Store) Outbox() repository.OutboxRepository { return outboxRepo{s} }

// LoginAttempts returns the LoginAttemptRepository view of the store.
func (s *Store) LoginAttempts() repository.LoginAttemptRepository { return attemptRepo{s} }

// lock acquires the store mutex and returns the injected failure for op.
func (s *Store) lock(op Op) error {
	s.mu.Lock()
	return s.failures[op]
}

func sortedRecords(m map[string]domain.PlayerRecord) []domain.PlayerRecord {
	out := make([]domain.PlayerRecord, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ID, out[j].ID
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return out
}
