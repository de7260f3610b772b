package store

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

type migrationSet struct {
	fs      embed.FS
	dir     string
	dialect string
}

func migrationsFor(driver string) migrationSet {
	if driver == DriverPostgres {
		return migrationSet{fs: postgresMigrations, dir: "migrations/postgres", dialect: "postgres"}
	}
	return migrationSet{fs: sqliteMigrations, dir: "migrations/sqlite", dialect: "sqlite3"}
}

// goose keeps its dialect and filesystem in package globals.
func (m migrationSet) activate() error {
	goose.SetBaseFS(m.fs)
	goose.SetLogger(goose.NopLogger())
	return goose.SetDialect(m.dialect)
}

// Migrate brings the snapshot schema up to date.
func Migrate(ctx context.Context, db *DB) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("db is nil")
	}
	m := migrationsFor(db.Driver)
	if err := m.activate(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB.DB, m.dir); err != nil {
		return fmt.Errorf("migrate %s: %w", m.dialect, err)
	}
	return nil
}

// SchemaVersion is the latest applied migration, 0 on a fresh database.
func SchemaVersion(ctx context.Context, db *DB) (int64, error) {
	if db == nil || db.DB == nil {
		return 0, fmt.Errorf("db is nil")
	}
	if err := migrationsFor(db.Driver).activate(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db.DB.DB)
}
