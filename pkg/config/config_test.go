package config

import (
	"testing"
)

func TestRead_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Read()

	if cfg.Port != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.DatabasePath != "./app.db" {
		t.Fatalf("expected ./app.db, got %q", cfg.DatabasePath)
	}
	if cfg.StoreORM {
		t.Fatalf("expected raw SQL store by default")
	}
}

func TestRead_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9999")
	t.Setenv("STORE_ORM", "true")
	t.Setenv("DATABASE_PATH", "/tmp/items.db")

	cfg := Read()

	if cfg.Port != "9999" {
		t.Fatalf("expected port 9999, got %q", cfg.Port)
	}
	if !cfg.StoreORM {
		t.Fatalf("expected STORE_ORM=true to select the ORM store")
	}
	if cfg.DatabasePath != "/tmp/items.db" {
		t.Fatalf("expected /tmp/items.db, got %q", cfg.DatabasePath)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &AppConfig{
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresUsername: "u",
		PostgresPassword: "p",
		PostgresDatabase: "items",
		PostgresSSLMode:  "disable",
	}

	want := "host=db port=5432 user=u password=p dbname=items sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
