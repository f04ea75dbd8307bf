package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"items/domain"
	"items/infra/database"

	"github.com/jmoiron/sqlx"
)

const (
	listItemsQuery  = `SELECT id, name, description, price FROM items ORDER BY id`
	getItemQuery    = `SELECT id, name, description, price FROM items WHERE id = ?`
	createItemQuery = `INSERT INTO items (name, description, price) VALUES (?, ?, ?) RETURNING id, name, description, price`
	updateItemQuery = `UPDATE items SET name = ?, description = ?, price = ? WHERE id = ? RETURNING id, name, description, price`
	deleteItemQuery = `DELETE FROM items WHERE id = ?`
)

// Repository runs hand-written SQL against the items table. Every call checks
// out its own connection and returns it before the call completes.
type Repository struct {
	db      *sqlx.DB
	queries map[string]string
}

func NewRepository(db *sqlx.DB) *Repository {
	queries := make(map[string]string, 5)
	for _, q := range []string{listItemsQuery, getItemQuery, createItemQuery, updateItemQuery, deleteItemQuery} {
		queries[q] = db.Rebind(q)
	}

	return &Repository{db: db, queries: queries}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) PoolStats() map[string]interface{} {
	return database.PoolStats(r.db)
}

func (r *Repository) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

func (r *Repository) ListItems(ctx context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, 0)

	err := r.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &items, r.queries[listItemsQuery])
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	var i domain.Item

	err := r.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &i, r.queries[getItemQuery], id)
	})

	return i, notFound(err)
}

func (r *Repository) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	var i domain.Item

	err := r.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.QueryRowxContext(ctx, r.queries[createItemQuery],
			item.Name, item.Description, item.Price,
		).StructScan(&i)
	})

	return i, err
}

// UpdateItem overwrites name, description and price in one statement; there is no
// version check, so the last writer wins.
func (r *Repository) UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	var i domain.Item

	err := r.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.QueryRowxContext(ctx, r.queries[updateItemQuery],
			item.Name, item.Description, item.Price, item.ID,
		).StructScan(&i)
	})

	return i, notFound(err)
}

func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	return r.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, r.queries[deleteItemQuery], id)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrItemNotFound
		}

		return nil
	})
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrItemNotFound
	}
	return err
}
