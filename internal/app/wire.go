package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/kickoff/fantasy/internal/auth"
	"github.com/kickoff/fantasy/internal/guard"
	"github.com/kickoff/fantasy/internal/handler"
	"github.com/kickoff/fantasy/internal/infra"
	"github.com/kickoff/fantasy/internal/repository"
	"github.com/kickoff/fantasy/internal/service"
)

// Repositories groups the storage implementations the router wires into services.
type Repositories struct {
	Players       repository.PlayerRepository
	Teams         repository.TeamRepository
	Users         repository.UserRepository
	Outbox        repository.OutboxRepository
	LoginAttempts repository.LoginAttemptRepository
}

// PostgresRepositories returns the pgx-backed repositories.
func PostgresRepositories() Repositories {
	return Repositories{
		Players:       repository.NewPlayerRepository(),
		Teams:         repository.NewTeamRepository(),
		Users:         repository.NewPgUserRepository(),
		Outbox:        repository.NewOutboxRepository(),
		LoginAttempts: repository.NewLoginAttemptRepository(),
	}
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	DB     repository.DBTX
	Tx     repository.TxRunner
	Health infra.Pinger
	Repos  Repositories

	Resolver      auth.Resolver
	Authenticator service.Authenticator

	Logger  *slog.Logger
	Metrics *infra.Metrics
	// Clock drives the login guards; nil uses the real clock.
	Clock clockwork.Clock

	CORSAllowedOrigins string
	TeamStrictReads    bool
	LoginRateLimit     int
}

// NewCatalogService builds the catalog service from deps. fantasyctl seed uses it too.
func NewCatalogService(deps RouterDeps) *service.CatalogService {
	return service.NewCatalogService(deps.DB, deps.Tx, deps.Repos.Players, deps.Repos.Outbox, deps.Logger)
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	repos := deps.Repos

	// Guards
	lockout := guard.NewLockout(deps.DB, repos.LoginAttempts, deps.Clock, logger)
	loginLimiter := guard.NewRateLimiter(deps.LoginRateLimit, time.Minute, deps.Clock)

	// Services
	catalogSvc := NewCatalogService(deps)
	teamSvc := service.NewTeamService(deps.DB, deps.Tx, repos.Teams, repos.Players, repos.Outbox, logger, deps.TeamStrictReads)
	userSvc := service.NewUserService(deps.DB, repos.Users, deps.Authenticator, lockout, logger)

	// Handlers
	userHandler := handler.NewUserHandler(userSvc)
	playerHandler := handler.NewPlayerHandler(catalogSvc)
	teamHandler := handler.NewTeamHandler(teamSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	if deps.Metrics != nil {
		r.Use(handler.Metrics(deps.Metrics))
	}
	r.Use(handler.CORSWithOrigins(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health and metrics (no auth)
	r.Get("/health", handler.HealthHandler(deps.Health))
	if deps.Metrics != nil {
		r.Method("GET", "/metrics", deps.Metrics.Handler())
	}

	// Account routes (no auth, rate limited per IP)
	r.Group(func(r chi.Router) {
		r.Use(handler.RateLimit(loginLimiter, logger))

		r.Post("/sync-user", userHandler.SyncUser)
		r.Post("/login", userHandler.Login)
	})
	r.Get("/users/{user_id}", userHandler.GetUser)

	// Identity-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(deps.Resolver, logger))

		r.Get("/players", playerHandler.List)
		r.With(auth.RequireAdmin).Post("/players", playerHandler.Add)

		r.Route("/team", func(r chi.Router) {
			r.Get("/", teamHandler.Get)
			r.Post("/", teamHandler.Create)
			r.Put("/", teamHandler.Update)
		})
	})

	return r
}
