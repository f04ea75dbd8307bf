package item

import (
	"context"
	"items/domain"
)

// Repository is the item store. Implementations return domain.ErrItemNotFound
// when an id does not exist.
type Repository interface {
	Close() error
	ListItems(ctx context.Context) ([]domain.Item, error)
	GetItem(ctx context.Context, id int64) (domain.Item, error)
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}
