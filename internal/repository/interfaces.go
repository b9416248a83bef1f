package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kickoff/fantasy/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(db DBTX) error) error
}

// PlayerRepository provides access to the players catalog.
type PlayerRepository interface {
	// List returns every stored player in catalog order.
	List(ctx context.Context, db DBTX) ([]domain.PlayerRecord, error)

	// FindByIDs returns the stored players whose id is in ids, in no particular order.
	FindByIDs(ctx context.Context, db DBTX, ids []string) ([]domain.PlayerRecord, error)

	// InsertIfAbsent inserts players skipping ids that already exist. Returns the inserted count.
	InsertIfAbsent(ctx context.Context, db DBTX, players []domain.Player) (int64, error)

	// Create inserts a single player. Returns nil if the id is already taken.
	Create(ctx context.Context, db DBTX, player domain.Player) (*domain.PlayerRecord, error)
}

// TeamRepository provides access to user_teams.
type TeamRepository interface {
	// FindByUserID returns the user's team, or nil if none exists.
	FindByUserID(ctx context.Context, db DBTX, userID string) (*domain.Team, error)

	// Create inserts a team for the user. Returns nil if the user already has one.
	Create(ctx context.Context, db DBTX, userID string, playerIDs []string) (*domain.Team, error)

	// ReplacePlayers overwrites the user's player ids. Returns nil if no row was updated.
	ReplacePlayers(ctx context.Context, db DBTX, userID string, playerIDs []string) (*domain.Team, error)
}

// UserRepository provides access to users.
type UserRepository interface {
	// FindByID returns a user, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id string) (*domain.User, error)

	// CreateIfAbsent inserts the user. Returns nil if the id already exists.
	CreateIfAbsent(ctx context.Context, db DBTX, user domain.User) (*domain.User, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the state change).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events oldest first.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error)

	// MarkPublished stamps the given events as published.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// LoginAttemptRepository provides access to login_attempts.
type LoginAttemptRepository interface {
	// Record inserts a login attempt row.
	Record(ctx context.Context, db DBTX, email, ip string, success bool) error

	// CountFailuresSince counts failed attempts for email after since.
	CountFailuresSince(ctx context.Context, db DBTX, email string, since time.Time) (int, error)
}
