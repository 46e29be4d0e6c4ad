// internal/db/db.go
package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed schema/*.sql seed/*.sql
var files embed.FS

func init() {
	// sqlx only knows the cgo driver name "sqlite3".
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects and pings the database.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one connection keeps ":memory:" databases alive and serialises writers
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// Migrate creates the tables for the connection's driver if they are missing.
func Migrate(ctx context.Context, conn *sqlx.DB) error {
	return execFile(ctx, conn, "schema/"+conn.DriverName()+".sql")
}

// Seed loads the demo data set. Re-running it is a no-op.
func Seed(ctx context.Context, conn *sqlx.DB) error {
	if err := execFile(ctx, conn, "seed/demo.sql"); err != nil {
		return err
	}
	if conn.DriverName() == DriverPostgres {
		return execFile(ctx, conn, "seed/postgres_sequences.sql")
	}
	return nil
}

func execFile(ctx context.Context, conn *sqlx.DB, name string) error {
	content, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if _, err := conn.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return nil
}
