package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesItemsTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")

	db, err := Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	defer db.Close()

	var columns []string
	if err := db.SelectContext(ctx, &columns, `SELECT name FROM pragma_table_info('items') ORDER BY cid`); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := []string{"id", "name", "description", "price"}
	if len(columns) != len(want) {
		t.Fatalf("expected columns %v, got %v", want, columns)
	}
	for i := range want {
		if columns[i] != want[i] {
			t.Fatalf("expected columns %v, got %v", want, columns)
		}
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")

	first, err := Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := first.ExecContext(ctx, `INSERT INTO items (name, price) VALUES ('Widget', 9.99)`); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	first.Close()

	second, err := Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	defer second.Close()

	var count int
	if err := second.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected existing row to survive reopen, got %d rows", count)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("app.db"); got != "app.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := sqliteDSN("file:app.db?mode=rwc"); got != "file:app.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := sqliteDSN("app.db?_pragma=busy_timeout(1)"); got != "app.db?_pragma=busy_timeout(1)" {
		t.Fatalf("expected explicit pragmas to be kept, got %q", got)
	}
}

func TestPoolStats(t *testing.T) {
	db, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "items.db"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	defer db.Close()

	stats := PoolStats(db)
	if stats["max_open_connections"].(int) != 4 {
		t.Fatalf("expected max_open_connections 4, got %v", stats["max_open_connections"])
	}
	if _, ok := stats["wait_duration_ms"].(int64); !ok {
		t.Fatalf("expected wait_duration_ms to be int64, got %T", stats["wait_duration_ms"])
	}
}
