// Package migrations applies the embedded goose migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
)

// Dialect names a migration set.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var embedded embed.FS

// goose keeps its dialect and base FS in package state.
var mu sync.Mutex

func dir(d Dialect) (string, error) {
	switch d {
	case SQLite:
		return "sqlite", nil
	case Postgres:
		return "postgres", nil
	default:
		return "", eris.Errorf("migrations: unknown dialect %q", d)
	}
}

// Up runs all pending migrations for dialect.
func Up(ctx context.Context, db *sql.DB, d Dialect) error {
	path, err := dir(d)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(string(d)); err != nil {
		return eris.Wrap(err, "migrations: set dialect")
	}
	if err := goose.UpContext(ctx, db, path); err != nil {
		return eris.Wrapf(err, "migrations: %s up", d)
	}
	return nil
}

// Version reports the current schema version for dialect.
func Version(ctx context.Context, db *sql.DB, d Dialect) (int64, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := goose.SetDialect(string(d)); err != nil {
		return 0, eris.Wrap(err, "migrations: set dialect")
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, eris.Wrap(err, "migrations: version")
	}
	return v, nil
}
