package main

import (
	"context"
	"crypto/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/harlequingg/taskmanager/internal/accounts"
	"github.com/harlequingg/taskmanager/internal/auth"
	"github.com/harlequingg/taskmanager/internal/data"
	"github.com/harlequingg/taskmanager/internal/logutil"
	"github.com/harlequingg/taskmanager/internal/mailer"
	"github.com/harlequingg/taskmanager/internal/tasks"
)

const version = "1.0.0"

type application struct {
	config   config
	logger   zerolog.Logger
	tokens   *auth.Tokens
	accounts *accounts.Service
	tasks    *tasks.Service
	mailer   mailer.Sender
	wg       sync.WaitGroup
}

func main() {
	var cfg config
	app := &cli.App{
		Name:    "taskmanager",
		Usage:   "Task manager REST API",
		Version: version,
		Flags:   logFlags(&cfg),
		Before: func(ctx *cli.Context) error {
			logger, err := logutil.New(cfg.log.level, cfg.log.format)
			if err != nil {
				return err
			}
			log.Logger = logger
			ctx.Context = logutil.WithLogger(ctx.Context, logger)
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(&cfg),
			migrateCmd(&cfg),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}

func serveCmd(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: serveFlags(cfg),
		Action: func(ctx *cli.Context) error {
			logger := logutil.GetOrDefault(ctx.Context)

			store, err := data.Open(ctx.Context, cfg.storeConfig())
			if err != nil {
				return err
			}
			defer store.Close(context.Background())
			logger.Info().Msg("established a connection with database")

			if cfg.jwt.secret == "" {
				secret := make([]byte, 32)
				_, err = rand.Read(secret)
				if err != nil {
					return err
				}
				cfg.jwt.secret = string(secret)
				logger.Warn().Msg("no JWT secret configured, generated a random one: tokens will not survive a restart")
			}

			app, err := newApplication(*cfg, logger, store)
			if err != nil {
				return err
			}
			return app.serve(ctx.Context)
		},
	}
}

func migrateCmd(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply schema migrations (SQL) or create indexes (MongoDB) and exit",
		Flags: dbFlags(cfg),
		Action: func(ctx *cli.Context) error {
			store, err := data.Open(ctx.Context, cfg.storeConfig())
			if err != nil {
				return err
			}
			logger := logutil.GetOrDefault(ctx.Context)
			logger.Info().Msg("database is up to date")
			return store.Close(ctx.Context)
		},
	}
}

func newApplication(cfg config, logger zerolog.Logger, store data.Store) (*application, error) {
	hasher, err := auth.NewHasher(cfg.bcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens([]byte(cfg.jwt.secret), cfg.jwt.ttl)
	if err != nil {
		return nil, err
	}
	app := &application{
		config:   cfg,
		logger:   logger,
		tokens:   tokens,
		accounts: accounts.New(store, hasher, tokens),
		tasks:    tasks.New(store),
	}
	if strings.TrimSpace(cfg.smtp.host) != "" {
		app.mailer = mailer.New(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	}
	return app, nil
}
