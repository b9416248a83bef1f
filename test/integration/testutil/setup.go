//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kickoff/fantasy/internal/app"
	"github.com/kickoff/fantasy/internal/auth"
	"github.com/kickoff/fantasy/internal/infra"
	"github.com/kickoff/fantasy/internal/repository"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	TestJWTSecret = "integration-test-secret"
	TestDBUser    = "fantasy"
	TestDBPass    = "fantasy"
	TestDBName    = "fantasy_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server   *httptest.Server
	Pool     *pgxpool.Pool
	JWTMgr   *auth.JWTManager
	Accounts *Accounts
	t        *testing.T
}

var (
	sharedPool *pgxpool.Pool
	sharedDSN  string
	poolOnce   sync.Once
	poolErr    error
)

func startPostgres(ctx context.Context) (string, error) {
	// The container lives for the whole test binary; ryuk reaps it afterwards.
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase(TestDBName),
		postgres.WithUsername(TestDBUser),
		postgres.WithPassword(TestDBPass),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}
	return container.ConnectionString(ctx, "sslmode=disable")
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		dsn := os.Getenv("TEST_DATABASE_URL")
		if dsn == "" {
			dsn, poolErr = startPostgres(ctx)
			if poolErr != nil {
				return
			}
		}
		sharedDSN = dsn

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		if err := infra.RunMigrations(dsn, logger); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// DSN returns the connection string of the shared test database.
func DSN(t *testing.T) string {
	t.Helper()
	getSharedPool(t)
	return sharedDSN
}

// Option tweaks the router deps of a TestEnv.
type Option func(*app.RouterDeps)

// WithStrictReads makes team read failures surface as errors.
func WithStrictReads() Option {
	return func(d *app.RouterDeps) { d.TeamStrictReads = true }
}

// NewTestEnv creates a test environment with an httptest.Server backed by the real router and test DB.
func NewTestEnv(t *testing.T, opts ...Option) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)

	jwtMgr := auth.NewJWTManager(TestJWTSecret, time.Hour)
	accounts := NewAccounts()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	deps := app.RouterDeps{
		DB:                 pool,
		Tx:                 repository.NewPoolTxRunner(pool),
		Health:             pool,
		Repos:              app.PostgresRepositories(),
		Resolver:           auth.NewJWTResolver(jwtMgr),
		Authenticator:      accounts,
		Logger:             logger,
		Metrics:            infra.NewMetrics(),
		CORSAllowedOrigins: "*",
		LoginRateLimit:     1000,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	server := httptest.NewServer(app.NewRouter(deps))

	env := &TestEnv{
		Server:   server,
		Pool:     pool,
		JWTMgr:   jwtMgr,
		Accounts: accounts,
		t:        t,
	}

	t.Cleanup(func() {
		server.Close()
		env.CleanAll()
	})

	// Clean before test to ensure isolation
	env.CleanAll()

	return env
}
