package item

import (
	"context"
	"errors"
	"items/domain"
	"items/pkg/events"
	"items/pkg/httperror"
	"time"
)

type DeleteItemHandler struct {
	repository Repository
	publisher  events.Publisher
}

func NewDeleteItemHandler(repository Repository, publisher events.Publisher) *DeleteItemHandler {
	return &DeleteItemHandler{
		repository: repository,
		publisher:  publisher,
	}
}

type DeleteItemRequest struct {
	ItemID int64 `params:"id" json:"-"`
}

type DeleteItemResponse struct {
	Detail string `json:"detail"`
}

func (h DeleteItemHandler) Handle(ctx context.Context, req *DeleteItemRequest) (*DeleteItemResponse, error) {
	err := h.repository.DeleteItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, httperror.NotFound(
				"item.destroy.not_found",
				"Item not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"item.destroy.failed",
			"Failed to delete item",
			nil,
		)
	}

	publishEvent(ctx, h.publisher, events.ItemDeletedEvent, req.ItemID, events.ItemDeletedPayload{
		ID:        req.ItemID,
		DeletedAt: time.Now().UTC(),
	})

	return &DeleteItemResponse{
		Detail: "Item deleted",
	}, nil
}
