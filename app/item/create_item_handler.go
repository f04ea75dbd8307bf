package item

import (
	"context"
	"items/domain"
	"items/pkg/events"
	"items/pkg/httperror"
)

type CreateItemHandler struct {
	repository Repository
	publisher  events.Publisher
}

type CreateItemRequest struct {
	Name        *string       `json:"name" validate:"required"`
	Description OptionalText  `json:"description"`
	Price       *domain.Price `json:"price" validate:"required"`
}

// Item applies the input defaults: a missing description is stored as "".
func (r CreateItemRequest) Item() domain.Item {
	return domain.Item{
		Name:        *r.Name,
		Description: r.Description.Value,
		Price:       float64(*r.Price),
	}
}

func NewCreateItemHandler(repository Repository, publisher events.Publisher) *CreateItemHandler {
	return &CreateItemHandler{
		repository: repository,
		publisher:  publisher,
	}
}

func (h CreateItemHandler) Handle(ctx context.Context, req *CreateItemRequest) (*domain.Item, error) {
	if err := validateRequest("create", req); err != nil {
		return nil, err
	}

	item, err := h.repository.CreateItem(ctx, req.Item())
	if err != nil {
		return nil, httperror.InternalServerError(
			"item.create.failed",
			"An error occurred while creating the item",
			nil,
		)
	}

	publishEvent(ctx, h.publisher, events.ItemCreatedEvent, item.ID, events.NewItemPayload(item))

	return &item, nil
}
