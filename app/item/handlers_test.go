package item

import (
	"context"
	"errors"
	"items/domain"
	"items/pkg/events"
	"items/pkg/httperror"
	"items/pkg/requestid"
	"net/http"
	"strconv"
	"testing"
)

type mockRepository struct {
	items  map[int64]domain.Item
	nextID int64
	err    error

	createCalledWith domain.Item
	updateCalledWith domain.Item
	deleteCalledWith int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]domain.Item)}
}

func (m *mockRepository) Close() error { return nil }

func (m *mockRepository) ListItems(_ context.Context) ([]domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	items := make([]domain.Item, 0, len(m.items))
	for id := int64(1); id <= m.nextID; id++ {
		if it, ok := m.items[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (m *mockRepository) GetItem(_ context.Context, id int64) (domain.Item, error) {
	if m.err != nil {
		return domain.Item{}, m.err
	}
	it, ok := m.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return it, nil
}

func (m *mockRepository) CreateItem(_ context.Context, item domain.Item) (domain.Item, error) {
	m.createCalledWith = item
	if m.err != nil {
		return domain.Item{}, m.err
	}
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = item
	return item, nil
}

func (m *mockRepository) UpdateItem(_ context.Context, item domain.Item) (domain.Item, error) {
	m.updateCalledWith = item
	if m.err != nil {
		return domain.Item{}, m.err
	}
	if _, ok := m.items[item.ID]; !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *mockRepository) DeleteItem(_ context.Context, id int64) error {
	m.deleteCalledWith = id
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

type mockPublisher struct {
	published []*events.Event
	headers   []events.Headers
	err       error
}

func (p *mockPublisher) Publish(_ context.Context, _ string, event *events.Event, headers events.Headers) error {
	p.published = append(p.published, event)
	p.headers = append(p.headers, headers)
	return p.err
}

func (p *mockPublisher) Close() error { return nil }

func ptr[T any](v T) *T { return &v }

func expectStatus(t *testing.T, err error, status int) *httperror.Error {
	t.Helper()
	var httpErr *httperror.Error
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *httperror.Error, got %v", err)
	}
	if httpErr.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, httpErr.Status, httpErr.Code)
	}
	return httpErr
}

func TestCreateItem_Success(t *testing.T) {
	repo := newMockRepository()
	pub := &mockPublisher{}
	h := NewCreateItemHandler(repo, pub)

	res, err := h.Handle(context.Background(), &CreateItemRequest{
		Name:  ptr("Widget"),
		Price: ptr(domain.Price(9.99)),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := domain.Item{ID: 1, Name: "Widget", Description: "", Price: 9.99}
	if *res != want {
		t.Fatalf("expected %+v, got %+v", want, *res)
	}
	if len(pub.published) != 1 || pub.published[0].Event != events.ItemCreatedEvent {
		t.Fatalf("expected one item.created event, got %+v", pub.published)
	}
}

func TestCreateItem_MissingFields(t *testing.T) {
	repo := newMockRepository()
	h := NewCreateItemHandler(repo, nil)

	_, err := h.Handle(context.Background(), &CreateItemRequest{Description: OptionalText{Value: "no name, no price"}})

	httpErr := expectStatus(t, err, http.StatusUnprocessableEntity)
	details, ok := httpErr.Details.([]FieldError)
	if !ok || len(details) != 2 {
		t.Fatalf("expected two field errors, got %#v", httpErr.Details)
	}
	if details[0].Field != "name" || details[1].Field != "price" {
		t.Fatalf("expected name and price errors, got %+v", details)
	}
	if repo.createCalledWith != (domain.Item{}) {
		t.Fatalf("expected repository not to be called, got %+v", repo.createCalledWith)
	}
}

func TestCreateItem_EmptyNameIsAccepted(t *testing.T) {
	h := NewCreateItemHandler(newMockRepository(), nil)

	res, err := h.Handle(context.Background(), &CreateItemRequest{Name: ptr(""), Price: ptr(domain.Price(-1))})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.Name != "" || res.Price != -1 {
		t.Fatalf("unexpected item %+v", *res)
	}
}

func TestCreateItem_RepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.err = errors.New("disk full")
	pub := &mockPublisher{}
	h := NewCreateItemHandler(repo, pub)

	_, err := h.Handle(context.Background(), &CreateItemRequest{Name: ptr("Widget"), Price: ptr(domain.Price(1))})

	expectStatus(t, err, http.StatusInternalServerError)
	if len(pub.published) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.published))
	}
}

func TestCreateItem_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	h := NewCreateItemHandler(newMockRepository(), pub)

	if _, err := h.Handle(context.Background(), &CreateItemRequest{Name: ptr("Widget"), Price: ptr(domain.Price(1))}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestCreateItem_EventCarriesRequestID(t *testing.T) {
	pub := &mockPublisher{}
	h := NewCreateItemHandler(newMockRepository(), pub)
	ctx := requestid.NewContext(context.Background(), "req-1")

	if _, err := h.Handle(ctx, &CreateItemRequest{Name: ptr("Widget"), Price: ptr(domain.Price(1))}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if pub.published[0].CorrelationID != "req-1" {
		t.Fatalf("expected correlation id req-1, got %q", pub.published[0].CorrelationID)
	}
}

func TestGetItems_Success(t *testing.T) {
	repo := newMockRepository()
	repo.CreateItem(context.Background(), domain.Item{Name: "a", Price: 1})
	repo.CreateItem(context.Background(), domain.Item{Name: "b", Price: 2})
	h := NewGetItemsHandler(repo)

	res, err := h.Handle(context.Background(), &GetItemsRequest{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(*res) != 2 || (*res)[0].Name != "a" || (*res)[1].Name != "b" {
		t.Fatalf("unexpected items %+v", *res)
	}
}

func TestGetItems_RepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.err = errors.New("locked")

	_, err := NewGetItemsHandler(repo).Handle(context.Background(), &GetItemsRequest{})

	expectStatus(t, err, http.StatusInternalServerError)
}

func TestGetItem_NotFound(t *testing.T) {
	_, err := NewGetItemHandler(newMockRepository()).Handle(context.Background(), &GetItemRequest{ItemID: 9})

	httpErr := expectStatus(t, err, http.StatusNotFound)
	if httpErr.Message != "Item not found" {
		t.Fatalf("expected 'Item not found', got %q", httpErr.Message)
	}
}

func TestGetItem_StoreErrorIsNotNotFound(t *testing.T) {
	repo := newMockRepository()
	repo.err = errors.New("connection refused")

	_, err := NewGetItemHandler(repo).Handle(context.Background(), &GetItemRequest{ItemID: 1})

	expectStatus(t, err, http.StatusInternalServerError)
}

func TestUpdateItem_ReplacesAllFields(t *testing.T) {
	repo := newMockRepository()
	repo.CreateItem(context.Background(), domain.Item{Name: "Widget", Description: "blue", Price: 9.99})
	pub := &mockPublisher{}
	h := NewUpdateItemHandler(repo, pub)

	res, err := h.Handle(context.Background(), &UpdateItemRequest{
		ItemID:            1,
		CreateItemRequest: CreateItemRequest{Name: ptr("Widget2"), Price: ptr(domain.Price(12))},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := domain.Item{ID: 1, Name: "Widget2", Description: "", Price: 12}
	if *res != want {
		t.Fatalf("expected %+v, got %+v", want, *res)
	}
	if repo.updateCalledWith != want {
		t.Fatalf("expected repository update with %+v, got %+v", want, repo.updateCalledWith)
	}
	if len(pub.published) != 1 || pub.published[0].Event != events.ItemUpdatedEvent {
		t.Fatalf("expected one item.updated event, got %+v", pub.published)
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	pub := &mockPublisher{}
	_, err := NewUpdateItemHandler(newMockRepository(), pub).Handle(context.Background(), &UpdateItemRequest{
		ItemID:            3,
		CreateItemRequest: CreateItemRequest{Name: ptr("x"), Price: ptr(domain.Price(1))},
	})

	expectStatus(t, err, http.StatusNotFound)
	if len(pub.published) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.published))
	}
}

func TestUpdateItem_ValidationRunsFirst(t *testing.T) {
	repo := newMockRepository()
	_, err := NewUpdateItemHandler(repo, nil).Handle(context.Background(), &UpdateItemRequest{ItemID: 3})

	expectStatus(t, err, http.StatusUnprocessableEntity)
	if repo.updateCalledWith != (domain.Item{}) {
		t.Fatalf("expected repository not to be called")
	}
}

func TestDeleteItem_Success(t *testing.T) {
	repo := newMockRepository()
	repo.CreateItem(context.Background(), domain.Item{Name: "Widget", Price: 1})
	pub := &mockPublisher{}

	res, err := NewDeleteItemHandler(repo, pub).Handle(context.Background(), &DeleteItemRequest{ItemID: 1})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.Detail != "Item deleted" {
		t.Fatalf("expected confirmation, got %q", res.Detail)
	}
	if repo.deleteCalledWith != 1 {
		t.Fatalf("expected DeleteItem called with 1, got %d", repo.deleteCalledWith)
	}
	if len(pub.published) != 1 || pub.published[0].Event != events.ItemDeletedEvent {
		t.Fatalf("expected one item.deleted event, got %+v", pub.published)
	}
}

func TestDeleteItem_NotFound(t *testing.T) {
	_, err := NewDeleteItemHandler(newMockRepository(), nil).Handle(context.Background(), &DeleteItemRequest{ItemID: 1})

	expectStatus(t, err, http.StatusNotFound)
}

func TestLifecycle_WidgetExample(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()

	created, err := NewCreateItemHandler(repo, nil).Handle(ctx, &CreateItemRequest{Name: ptr("Widget"), Price: ptr(domain.Price(9.99))})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := NewGetItemHandler(repo).Handle(ctx, &GetItemRequest{ItemID: created.ID})
	if err != nil || *got != *created {
		t.Fatalf("get: expected %+v, got %+v (%v)", *created, got, err)
	}

	if _, err := NewDeleteItemHandler(repo, nil).Handle(ctx, &DeleteItemRequest{ItemID: created.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = NewGetItemHandler(repo).Handle(ctx, &GetItemRequest{ItemID: created.ID})
	expectStatus(t, err, http.StatusNotFound)
}

func TestItemEvents_PartitionedByItemID(t *testing.T) {
	repo := newMockRepository()
	pub := &mockPublisher{}

	created, err := NewCreateItemHandler(repo, pub).Handle(context.Background(), &CreateItemRequest{Name: ptr("Widget"), Price: ptr(domain.Price(1))})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := NewDeleteItemHandler(repo, pub).Handle(context.Background(), &DeleteItemRequest{ItemID: created.ID}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(pub.headers) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.headers))
	}
	want := strconv.FormatInt(created.ID, 10)
	for i, h := range pub.headers {
		if h.PartitionKey != want {
			t.Fatalf("event %d: expected partition key %q, got %q", i, want, h.PartitionKey)
		}
	}
}
