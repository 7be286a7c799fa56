// Package data persists users and tasks. Every store operation is atomic for
// the single record it touches; no operation spans records transactionally.
package data

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// ErrNotFound is returned when a user or task does not exist.
	ErrNotFound Error = "record not found"
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail Error = "duplicate email"
	// ErrDuplicateUsername is returned when a username is already registered.
	ErrDuplicateUsername Error = "duplicate username"
)

// Error is an error type returned by the store implementations.
type Error string

func (e Error) Error() string { return string(e) }

const queryTimeout = 5 * time.Second

type Users interface {
	// InsertUser assigns u.ID and persists u. The email and username
	// uniqueness constraints are enforced by the store itself.
	InsertUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

type Tasks interface {
	ListTasksByOwner(ctx context.Context, userID string) ([]Task, error)
	// InsertTask assigns t.ID and persists t.
	InsertTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	// UpdateTask writes the title and completed fields of t. The owner is
	// never rewritten.
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, id string) error
}

type Store interface {
	Users
	Tasks
	Close(ctx context.Context) error
}

type Config struct {
	DSN          string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

// Open connects to the store named by cfg.DSN. MongoDB, PostgreSQL and SQLite
// are supported; SQL stores are migrated to the latest schema.
func Open(ctx context.Context, cfg Config) (Store, error) {
	dsn := cfg.DSN
	switch {
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return OpenMongo(ctx, dsn, cfg.Name)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenSQL(ctx, DialectPostgres, dsn, cfg)
	case strings.HasPrefix(dsn, "sqlite:"):
		return OpenSQL(ctx, DialectSQLite, strings.TrimPrefix(dsn, "sqlite:"), cfg)
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return OpenSQL(ctx, DialectSQLite, dsn, cfg)
	case dsn == "":
		return nil, fmt.Errorf("database DSN must be provided")
	default:
		return nil, fmt.Errorf("unsupported database DSN scheme in %q", redact(dsn))
	}
}

func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "..."
	}
	return "..."
}
