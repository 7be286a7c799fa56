package data

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/harlequingg/taskmanager/internal/logutil"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate brings db up to the latest schema for dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	fsys, err := fs.Sub(migrations, "migrations/"+string(dialect))
	if err != nil {
		return err
	}
	gooseDialect := goose.DialectSQLite3
	if dialect == DialectPostgres {
		gooseDialect = goose.DialectPostgres
	}
	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate %s database: %w", dialect, err)
	}
	log := logutil.GetOrDefault(ctx)
	for _, r := range results {
		log.Info().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("Applied migration")
	}
	return nil
}
