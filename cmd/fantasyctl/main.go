package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kickoff/fantasy/internal/app"
	"github.com/kickoff/fantasy/internal/auth"
	"github.com/kickoff/fantasy/internal/infra"
	"github.com/kickoff/fantasy/internal/repository"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cliApp := &cli.App{
		Name:  "fantasyctl",
		Usage: "operate the fantasy backend",
		Commands: []*cli.Command{
			migrateCommand(logger),
			seedCommand(logger),
			tokenCommand(),
			eventsCommand(logger),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		logger.Error("fantasyctl failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*infra.Config, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func migrateCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					return infra.RunMigrations(cfg.DSN(), logger)
				},
			},
			{
				Name:  "down",
				Usage: "roll back applied migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					if steps <= 0 {
						return fmt.Errorf("--steps must be positive, got %d", steps)
					}
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					return infra.RollbackMigrations(cfg.DSN(), steps, logger)
				},
			},
		},
	}
}

func seedCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "write the sample roster into the players table, skipping existing ids",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := infra.NewPostgresPool(c.Context, cfg, "fantasyctl")
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			catalog := app.NewCatalogService(app.RouterDeps{
				DB:     pool,
				Tx:     repository.NewPoolTxRunner(pool),
				Repos:  app.PostgresRepositories(),
				Logger: logger,
			})
			players, inserted, err := catalog.Seed(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "seeded %d of %d sample players\n", inserted, len(players))
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a signed identity token for local testing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "secret", EnvVars: []string{"SUPABASE_JWT_SECRET"}, Required: true},
			&cli.StringFlag{Name: "sub", Usage: "user id", Required: true},
			&cli.StringFlag{Name: "email"},
			&cli.BoolFlag{Name: "admin"},
			&cli.DurationFlag{Name: "ttl", Value: time.Hour},
		},
		Action: func(c *cli.Context) error {
			mgr := auth.NewJWTManager(c.String("secret"), c.Duration("ttl"))
			token, err := mgr.GenerateToken(c.String("sub"), c.String("email"), c.Bool("admin"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}

func eventsCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "inspect published domain events",
		Subcommands: []*cli.Command{
			{
				Name:  "tail",
				Usage: "print messages from a topic as they arrive",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "topic", Required: true, Usage: "e.g. fantasy.team.team.created"},
					&cli.StringFlag{Name: "group", Usage: "consumer group; empty reads from the latest offset"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, c.String("topic"), c.String("group"))
					defer consumer.Close()

					logger.Info("tailing topic", "topic", c.String("topic"), "brokers", cfg.KafkaBrokers)
					for {
						msg, err := consumer.ReadMessage(c.Context)
						if err != nil {
							if errors.Is(err, context.Canceled) {
								return nil
							}
							return fmt.Errorf("read message: %w", err)
						}
						fmt.Fprintf(c.App.Writer, "%s\t%s\n", msg.Key, msg.Value)
					}
				},
			},
		},
	}
}
