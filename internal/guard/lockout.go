package guard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/repository"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// Lockout blocks logins for an email after repeated failures.
type Lockout struct {
	db       repository.DBTX
	attempts repository.LoginAttemptRepository
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewLockout creates a lockout guard over login_attempts. A nil clock uses the real clock.
func NewLockout(db repository.DBTX, attempts repository.LoginAttemptRepository, clock clockwork.Clock, logger *slog.Logger) *Lockout {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Lockout{db: db, attempts: attempts, clock: clock, logger: logger}
}

// RecordAttempt stores a login attempt. Failures to record are logged and ignored.
func (l *Lockout) RecordAttempt(ctx context.Context, email, ip string, success bool) {
	if err := l.attempts.Record(ctx, l.db, normalizeEmail(email), ip, success); err != nil {
		l.logger.Warn("record login attempt failed", "error", err)
	}
}

// CheckLocked returns ErrAccountLocked if the account has >= MaxAttempts failed
// logins within the lockout window.
func (l *Lockout) CheckLocked(ctx context.Context, email string) error {
	since := l.clock.Now().Add(-LockoutWindow)
	count, err := l.attempts.CountFailuresSince(ctx, l.db, normalizeEmail(email), since)
	if err != nil {
		l.logger.Warn("lockout check failed, allowing login", "error", err)
		return nil
	}
	if count >= MaxAttempts {
		return domain.ErrAccountLocked("too many failed login attempts, try again later")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
