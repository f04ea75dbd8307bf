package store

import (
	"context"
	"items/app/item"
	"items/infra/database"
	"items/infra/ormstore"
	"items/infra/sqlstore"
	"items/pkg/config"

	"go.uber.org/zap"
)

// Open connects to the configured database and returns the raw SQL or the gorm
// repository on top of it, depending on STORE_ORM.
func Open(ctx context.Context, cfg *config.AppConfig) (item.Repository, error) {
	dsn := cfg.DatabasePath
	if cfg.DatabaseDriver == database.DriverPostgres {
		dsn = cfg.PostgresDSN()
	}

	db, err := database.Open(ctx, cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, err
	}

	if !cfg.StoreORM {
		zap.L().Info("using sqlx item repository")
		return sqlstore.NewRepository(db), nil
	}

	repository, err := ormstore.NewRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	zap.L().Info("using gorm item repository")
	return repository, nil
}
