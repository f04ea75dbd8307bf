package store

import (
	"context"
	"items/infra/ormstore"
	"items/infra/sqlstore"
	"items/pkg/config"
	"path/filepath"
	"testing"
)

func TestOpen_SelectsSQLRepository(t *testing.T) {
	cfg := &config.AppConfig{DatabaseDriver: "sqlite", DatabasePath: filepath.Join(t.TempDir(), "items.db")}

	repo, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	defer repo.Close()

	if _, ok := repo.(*sqlstore.Repository); !ok {
		t.Fatalf("expected *sqlstore.Repository, got %T", repo)
	}
}

func TestOpen_SelectsORMRepository(t *testing.T) {
	cfg := &config.AppConfig{DatabaseDriver: "sqlite", DatabasePath: filepath.Join(t.TempDir(), "items.db"), StoreORM: true}

	repo, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	defer repo.Close()

	if _, ok := repo.(*ormstore.Repository); !ok {
		t.Fatalf("expected *ormstore.Repository, got %T", repo)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), &config.AppConfig{DatabaseDriver: "mysql"}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
