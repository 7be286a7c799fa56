package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect names a SQL backend and its migration set.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func (d Dialect) driverName() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// SQLStore is a Store backed by PostgreSQL or SQLite. Both dialects accept
// the same $N placeholders, so queries are shared.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func OpenSQL(ctx context.Context, dialect Dialect, dsn string, cfg Config) (*SQLStore, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite {
		// a single connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.MaxIdleTime > 0 {
			db.SetConnMaxIdleTime(cfg.MaxIdleTime)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err = db.PingContext(pingCtx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	err = Migrate(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Close(context.Context) error {
	return s.db.Close()
}

func (s *SQLStore) InsertUser(ctx context.Context, u *User) error {
	query := `INSERT INTO users (id, username, email, password_hash)
			  VALUES ($1, $2, $3, $4)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, query, id, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		return duplicateUser(err)
	}
	u.ID = id
	return nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, username, email, password_hash
			  FROM users
			  WHERE email = $1`
	return s.getUser(ctx, query, email)
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, email, password_hash
			  FROM users
			  WHERE username = $1`
	return s.getUser(ctx, query, username)
}

func (s *SQLStore) getUser(ctx context.Context, query string, arg string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *SQLStore) ListTasksByOwner(ctx context.Context, userID string) ([]Task, error) {
	query := `SELECT id, title, completed, user_id
			  FROM tasks
			  WHERE user_id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		err = rows.Scan(&t.ID, &t.Title, &t.Completed, &t.UserID)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLStore) InsertTask(ctx context.Context, t *Task) error {
	query := `INSERT INTO tasks (id, user_id, title, completed)
			  VALUES ($1, $2, $3, $4)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, query, id, t.UserID, t.Title, t.Completed)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (s *SQLStore) GetTask(ctx context.Context, id string) (*Task, error) {
	query := `SELECT id, title, completed, user_id
			  FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t Task
	err := s.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Title, &t.Completed, &t.UserID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *SQLStore) UpdateTask(ctx context.Context, t *Task) error {
	query := `UPDATE tasks SET title = $1, completed = $2
			  WHERE id = $3`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, t.Title, t.Completed, t.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *SQLStore) DeleteTask(ctx context.Context, id string) error {
	query := `DELETE FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// duplicateUser maps unique constraint violations on users to
// ErrDuplicateEmail or ErrDuplicateUsername.
func duplicateUser(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrDuplicateEmail
		case "users_username_key":
			return ErrDuplicateUsername
		}
		return err
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := liteErr.Error()
		switch {
		case strings.Contains(msg, "users.email"):
			return ErrDuplicateEmail
		case strings.Contains(msg, "users.username"):
			return ErrDuplicateUsername
		}
	}
	return err
}

var _ Store = (*SQLStore)(nil)
