package data

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

var gooseDialects = map[string]goose.Dialect{
	driverPostgres: goose.DialectPostgres,
	driverSQLite:   goose.DialectSQLite3,
}

// migrate applies the embedded schema for the dialect.
func migrate(ctx context.Context, db *sql.DB, dialect string, l *log.Helper) error {
	gooseDialect, ok := gooseDialects[dialect]
	if !ok {
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}

	fsys, err := fs.Sub(migrations, path.Join("migrations", dialect))
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		l.Infof("applied migration %s in %s", r.Source.Path, r.Duration)
	}
	return nil
}
