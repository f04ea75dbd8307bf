package events

import (
	"items/domain"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ItemDomain   = "item"
	ItemExchange = "items.item"
)

const (
	ItemCreatedEvent = "item.created"
	ItemUpdatedEvent = "item.updated"
	ItemDeletedEvent = "item.deleted"
)

const (
	EventVersionV1 = "v1"
)

// ItemPayload is shared by item.created and item.updated.
type ItemPayload struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

type ItemDeletedPayload struct {
	ID        int64     `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

func NewItemPayload(item domain.Item) ItemPayload {
	return ItemPayload{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       decimal.NewFromFloat(item.Price),
		OccurredAt:  time.Now().UTC(),
	}
}

func (p ItemPayload) Item() domain.Item {
	return domain.Item{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
	}
}
