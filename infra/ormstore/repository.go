package ormstore

import (
	"context"
	"errors"
	"fmt"
	"items/domain"
	"items/infra/database"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jinzhu/copier"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type itemRow struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"not null"`
	Description string  `gorm:"not null"`
	Price       float64 `gorm:"not null"`
}

func (itemRow) TableName() string {
	return "items"
}

// Repository maps items through gorm. It shares the *sql.DB opened by the
// database package, so both stores see the same pool and schema.
type Repository struct {
	sqlDB *sqlx.DB
	db    *gorm.DB
}

func NewRepository(db *sqlx.DB) (*Repository, error) {
	var dialector gorm.Dialector
	switch db.DriverName() {
	case "postgres":
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	default:
		dialector = sqlite.Dialector{Conn: db.DB}
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: logger.New(zapWriter{}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return &Repository{sqlDB: db, db: gormDB}, nil
}

func (r *Repository) Close() error {
	return r.sqlDB.Close()
}

func (r *Repository) PoolStats() map[string]interface{} {
	return database.PoolStats(r.sqlDB)
}

// withConn pins one pooled connection for the whole callback and releases it afterwards.
func (r *Repository) withConn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Connection(fn)
}

func (r *Repository) ListItems(ctx context.Context) ([]domain.Item, error) {
	var rows []itemRow

	err := r.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Order("id").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(rows))
	if err := copier.Copy(&items, &rows); err != nil {
		return nil, fmt.Errorf("failed to map item rows: %w", err)
	}

	return items, nil
}

func (r *Repository) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	var row itemRow

	err := r.withConn(ctx, func(tx *gorm.DB) error {
		return tx.First(&row, id).Error
	})
	if err != nil {
		return domain.Item{}, notFound(err)
	}

	return toDomain(row)
}

func (r *Repository) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	row := itemRow{
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
	}

	err := r.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.Item{}, err
	}

	return toDomain(row)
}

func (r *Repository) UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	var row itemRow

	err := r.withConn(ctx, func(conn *gorm.DB) error {
		return conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&row, item.ID).Error; err != nil {
				return err
			}

			row.Name = item.Name
			row.Description = item.Description
			row.Price = item.Price

			return tx.Save(&row).Error
		})
	})
	if err != nil {
		return domain.Item{}, notFound(err)
	}

	return toDomain(row)
}

func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	return r.withConn(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&itemRow{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrItemNotFound
		}
		return nil
	})
}

func toDomain(row itemRow) (domain.Item, error) {
	var item domain.Item
	if err := copier.Copy(&item, &row); err != nil {
		return domain.Item{}, fmt.Errorf("failed to map item row: %w", err)
	}
	return item, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrItemNotFound
	}
	return err
}

type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	zap.S().Warnf(format, args...)
}
