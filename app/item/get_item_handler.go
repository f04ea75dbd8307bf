package item

import (
	"context"
	"errors"
	"items/domain"
	"items/pkg/httperror"
)

type GetItemHandler struct {
	repository Repository
}

func NewGetItemHandler(repository Repository) *GetItemHandler {
	return &GetItemHandler{
		repository: repository,
	}
}

type GetItemRequest struct {
	ItemID int64 `params:"id" json:"-"`
}

func (h GetItemHandler) Handle(ctx context.Context, req *GetItemRequest) (*domain.Item, error) {
	item, err := h.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, httperror.NotFound(
				"item.show.not_found",
				"Item not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"item.show.failed",
			"Failed to get item",
			nil,
		)
	}

	return &item, nil
}
