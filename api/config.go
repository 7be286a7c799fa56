package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/harlequingg/taskmanager/internal/auth"
	"github.com/harlequingg/taskmanager/internal/data"
)

type config struct {
	port int
	env  string
	db   struct {
		dsn          string
		name         string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	jwt struct {
		secret string
		ttl    time.Duration
	}
	bcryptCost int
	limiter    struct {
		enabled bool
		rps     float64
		burst   int
	}
	cors struct {
		trustedOrigins string
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	log struct {
		level  string
		format string
	}
}

func (cfg *config) storeConfig() data.Config {
	return data.Config{
		DSN:          cfg.db.dsn,
		Name:         cfg.db.name,
		MaxOpenConns: cfg.db.maxOpenConns,
		MaxIdleConns: cfg.db.maxIdleConns,
		MaxIdleTime:  cfg.db.maxIdleTime,
	}
}

func logFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Minimum log level [trace|debug|info|warn|error]",
			EnvVars:     []string{"LOG_LEVEL"},
			Value:       "info",
			Destination: &cfg.log.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log output format [auto|json|console]",
			EnvVars:     []string{"LOG_FORMAT"},
			Value:       "auto",
			Destination: &cfg.log.format,
		},
	}
}

func dbFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-dsn",
			Usage:       "Database DSN (mongodb://, postgres://, sqlite:<path>)",
			EnvVars:     []string{"DB_DSN", "MONGO_URI"},
			Required:    true,
			Destination: &cfg.db.dsn,
		},
		&cli.StringFlag{
			Name:        "db-name",
			Usage:       "MongoDB database name",
			EnvVars:     []string{"DB_NAME"},
			Value:       data.DefaultMongoDatabase,
			Destination: &cfg.db.name,
		},
		&cli.IntFlag{
			Name:        "db-max-open-conns",
			Usage:       "PostgreSQL max open connections",
			Value:       25,
			Destination: &cfg.db.maxOpenConns,
		},
		&cli.IntFlag{
			Name:        "db-max-idle-conns",
			Usage:       "PostgreSQL max idle connections",
			Value:       25,
			Destination: &cfg.db.maxIdleConns,
		},
		&cli.DurationFlag{
			Name:        "db-max-idle-time",
			Usage:       "PostgreSQL max connection idle time",
			Value:       15 * time.Minute,
			Destination: &cfg.db.maxIdleTime,
		},
	}
}

func serveFlags(cfg *config) []cli.Flag {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "port",
			Usage:       "Server port",
			EnvVars:     []string{"PORT"},
			Value:       5000,
			Destination: &cfg.port,
		},
		&cli.StringFlag{
			Name:        "env",
			Usage:       "Environment [development|production]",
			EnvVars:     []string{"APP_ENV"},
			Value:       "development",
			Destination: &cfg.env,
		},
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Token signing secret; a random one is generated when empty",
			EnvVars:     []string{"JWT_SECRET"},
			Destination: &cfg.jwt.secret,
		},
		&cli.DurationFlag{
			Name:        "jwt-ttl",
			Usage:       "Token lifetime",
			EnvVars:     []string{"JWT_TTL"},
			Value:       auth.DefaultTokenTTL,
			Destination: &cfg.jwt.ttl,
		},
		&cli.IntFlag{
			Name:        "bcrypt-cost",
			Usage:       "bcrypt work factor",
			EnvVars:     []string{"BCRYPT_COST"},
			Value:       auth.DefaultCost,
			Destination: &cfg.bcryptCost,
		},
		&cli.BoolFlag{
			Name:        "limiter-enabled",
			Usage:       "Enable per-client rate limiting",
			EnvVars:     []string{"LIMITER_ENABLED"},
			Value:       true,
			Destination: &cfg.limiter.enabled,
		},
		&cli.Float64Flag{
			Name:        "limiter-rps",
			Usage:       "Rate limiter maximum requests per second",
			EnvVars:     []string{"LIMITER_RPS"},
			Value:       20,
			Destination: &cfg.limiter.rps,
		},
		&cli.IntFlag{
			Name:        "limiter-burst",
			Usage:       "Rate limiter maximum burst",
			EnvVars:     []string{"LIMITER_BURST"},
			Value:       40,
			Destination: &cfg.limiter.burst,
		},
		&cli.StringFlag{
			Name:        "cors-trusted-origins",
			Usage:       "Trusted CORS origins (space separated, * allows any)",
			EnvVars:     []string{"CORS_TRUSTED_ORIGINS"},
			Destination: &cfg.cors.trustedOrigins,
		},
		&cli.StringFlag{
			Name:        "smtp-host",
			Usage:       "SMTP host; welcome e-mails are disabled when empty",
			EnvVars:     []string{"SMTP_HOST"},
			Destination: &cfg.smtp.host,
		},
		&cli.IntFlag{
			Name:        "smtp-port",
			Usage:       "SMTP port",
			EnvVars:     []string{"SMTP_PORT"},
			Value:       25,
			Destination: &cfg.smtp.port,
		},
		&cli.StringFlag{
			Name:        "smtp-username",
			Usage:       "SMTP username",
			EnvVars:     []string{"SMTP_USERNAME"},
			Destination: &cfg.smtp.username,
		},
		&cli.StringFlag{
			Name:        "smtp-password",
			Usage:       "SMTP password",
			EnvVars:     []string{"SMTP_PASSWORD"},
			Destination: &cfg.smtp.password,
		},
		&cli.StringFlag{
			Name:        "smtp-sender",
			Usage:       "SMTP sender",
			EnvVars:     []string{"SMTP_SENDER"},
			Value:       "Task Manager <no-reply@taskmanager.local>",
			Destination: &cfg.smtp.sender,
		},
	}
	return append(flags, dbFlags(cfg)...)
}
