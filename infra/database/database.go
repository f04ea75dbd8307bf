package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/lib/pq"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	price       REAL    NOT NULL
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS items (
	id          BIGSERIAL        PRIMARY KEY,
	name        TEXT             NOT NULL,
	description TEXT             NOT NULL DEFAULT '',
	price       DOUBLE PRECISION NOT NULL
)`

// Open connects to the item store and makes sure the items table exists.
// For sqlite, dsn is a file path; for postgres, a lib/pq connection string.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch driver {
	case DriverSQLite:
		db, err = sqlx.ConnectContext(ctx, DriverSQLite, sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		// Single writer per file; readers share the pool.
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(0)
	case DriverPostgres:
		db, err = sqlx.ConnectContext(ctx, DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		db.SetMaxOpenConns(15)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(2 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	zap.L().Info("item store ready", zap.String("driver", driver))

	return db, nil
}

func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure items table: %w", err)
	}

	return nil
}

// PoolStats returns current connection pool statistics
func PoolStats(db *sqlx.DB) map[string]interface{} {
	stats := db.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}
