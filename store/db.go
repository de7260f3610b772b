package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"

	defaultSQLitePath = "beedash.db"
	pingTimeout       = 10 * time.Second
)

// DB wraps sqlx.DB with the name of the driver it was opened with.
type DB struct {
	*sqlx.DB
	Driver string
}

// OpenFromConfig opens the snapshot database. A non-empty dbURL selects
// postgres unless driverOverride says otherwise; everything else is sqlite at
// sqlitePath.
func OpenFromConfig(dbURL, sqlitePath, driverOverride string) (*DB, error) {
	driver, dsn, err := resolveDSN(dbURL, sqlitePath, driverOverride)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &DB{DB: db, Driver: driver}, nil
}

func resolveDSN(dbURL, sqlitePath, driverOverride string) (string, string, error) {
	if sqlitePath == "" {
		sqlitePath = defaultSQLitePath
	}
	switch strings.ToLower(strings.TrimSpace(driverOverride)) {
	case "", "default":
		if dbURL != "" {
			return DriverPostgres, dbURL, nil
		}
		return DriverSQLite, sqlitePath, nil
	case "postgres", "pgx":
		if dbURL == "" {
			return "", "", fmt.Errorf("db_url required for %s driver", driverOverride)
		}
		return DriverPostgres, dbURL, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, sqlitePath, nil
	default:
		return "", "", fmt.Errorf("unsupported db driver %q", driverOverride)
	}
}

func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}
