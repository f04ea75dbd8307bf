package item

import (
	"context"
	"errors"
	"items/domain"
	"items/pkg/events"
	"items/pkg/httperror"
)

type UpdateItemHandler struct {
	repository Repository
	publisher  events.Publisher
}

// UpdateItemRequest replaces the whole record; fields left out take their
// create-time defaults rather than keeping stored values.
type UpdateItemRequest struct {
	ItemID int64 `params:"id" json:"-"`
	CreateItemRequest
}

func NewUpdateItemHandler(repository Repository, publisher events.Publisher) *UpdateItemHandler {
	return &UpdateItemHandler{
		repository: repository,
		publisher:  publisher,
	}
}

func (h UpdateItemHandler) Handle(ctx context.Context, req *UpdateItemRequest) (*domain.Item, error) {
	if err := validateRequest("update", req); err != nil {
		return nil, err
	}

	replacement := req.Item()
	replacement.ID = req.ItemID

	item, err := h.repository.UpdateItem(ctx, replacement)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, httperror.NotFound(
				"item.update.not_found",
				"Item not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"item.update.failed",
			"An error occurred while updating the item",
			nil,
		)
	}

	publishEvent(ctx, h.publisher, events.ItemUpdatedEvent, item.ID, events.NewItemPayload(item))

	return &item, nil
}
