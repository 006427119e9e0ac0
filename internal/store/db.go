package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL flavour behind a DB handle.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB wraps sql.DB for Postgres (pgx) or SQLite (go-sqlite3).
type DB struct {
	Client  *sql.DB
	Dialect Dialect
}

// NewDB opens a connection pool for connString. postgres:// and postgresql://
// URLs use pgx; sqlite: and file: URLs use SQLite with foreign keys enabled.
func NewDB(connString string) (*DB, error) {
	dialect, driver, dsn, err := parseConnString(connString)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		// An in-memory database lives only as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	return &DB{Client: db, Dialect: dialect}, db.PingContext(context.Background())
}

func parseConnString(connString string) (Dialect, string, string, error) {
	switch {
	case strings.HasPrefix(connString, "postgres://"), strings.HasPrefix(connString, "postgresql://"):
		return Postgres, "pgx", connString, nil
	case strings.HasPrefix(connString, "sqlite://"):
		return SQLite, "sqlite3", withForeignKeys(strings.TrimPrefix(connString, "sqlite://")), nil
	case strings.HasPrefix(connString, "sqlite:"):
		return SQLite, "sqlite3", withForeignKeys(strings.TrimPrefix(connString, "sqlite:")), nil
	case strings.HasPrefix(connString, "file:"):
		return SQLite, "sqlite3", withForeignKeys(connString), nil
	default:
		return "", "", "", fmt.Errorf("unsupported database url %q", connString)
	}
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// Healthy verifies database connectivity.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
