package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"items/app/item"
	"items/domain"
	"items/pkg/events"
	"items/pkg/httperror"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ItemServiceName = "items.v1.ItemService"

const (
	ItemService_GetItem_FullMethodName    = "/" + ItemServiceName + "/GetItem"
	ItemService_ListItems_FullMethodName  = "/" + ItemServiceName + "/ListItems"
	ItemService_CreateItem_FullMethodName = "/" + ItemServiceName + "/CreateItem"
	ItemService_UpdateItem_FullMethodName = "/" + ItemServiceName + "/UpdateItem"
	ItemService_DeleteItem_FullMethodName = "/" + ItemServiceName + "/DeleteItem"
)

// ItemServiceServer exposes the item operations with protobuf well-known types:
// ids travel as Int64Value, records as Struct with id, name, description and price.
type ItemServiceServer interface {
	GetItem(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListItems(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	CreateItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteItem(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
}

var ItemService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ItemServiceName,
	HandlerType: (*ItemServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetItem", Handler: unaryHandler(ItemService_GetItem_FullMethodName, ItemServiceServer.GetItem)},
		{MethodName: "ListItems", Handler: unaryHandler(ItemService_ListItems_FullMethodName, ItemServiceServer.ListItems)},
		{MethodName: "CreateItem", Handler: unaryHandler(ItemService_CreateItem_FullMethodName, ItemServiceServer.CreateItem)},
		{MethodName: "UpdateItem", Handler: unaryHandler(ItemService_UpdateItem_FullMethodName, ItemServiceServer.UpdateItem)},
		{MethodName: "DeleteItem", Handler: unaryHandler(ItemService_DeleteItem_FullMethodName, ItemServiceServer.DeleteItem)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "items/v1/item_service",
}

func RegisterItemServiceServer(s grpc.ServiceRegistrar, srv ItemServiceServer) {
	s.RegisterService(&ItemService_ServiceDesc, srv)
}

func unaryHandler[Req any, Res any](fullMethod string, call func(ItemServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ItemServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ItemServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type itemService struct {
	create *item.CreateItemHandler
	list   *item.GetItemsHandler
	get    *item.GetItemHandler
	update *item.UpdateItemHandler
	delete *item.DeleteItemHandler
}

func NewItemServiceServer(repository item.Repository, publisher events.Publisher) ItemServiceServer {
	return &itemService{
		create: item.NewCreateItemHandler(repository, publisher),
		list:   item.NewGetItemsHandler(repository),
		get:    item.NewGetItemHandler(repository),
		update: item.NewUpdateItemHandler(repository, publisher),
		delete: item.NewDeleteItemHandler(repository, publisher),
	}
}

func (s *itemService) GetItem(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	res, err := s.get.Handle(ctx, &item.GetItemRequest{ItemID: req.GetValue()})
	if err != nil {
		return nil, mapError(err)
	}
	return itemToStruct(*res)
}

func (s *itemService) ListItems(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	res, err := s.list.Handle(ctx, &item.GetItemsRequest{})
	if err != nil {
		return nil, mapError(err)
	}

	values := make([]*structpb.Value, 0, len(*res))
	for _, it := range *res {
		st, err := itemToStruct(it)
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(st))
	}

	return &structpb.ListValue{Values: values}, nil
}

func (s *itemService) CreateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in item.CreateItemRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, err
	}

	res, err := s.create.Handle(ctx, &in)
	if err != nil {
		return nil, mapError(err)
	}
	return itemToStruct(*res)
}

func (s *itemService) UpdateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	idValue, ok := req.GetFields()["id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	id := idValue.GetNumberValue()
	if _, isNumber := idValue.GetKind().(*structpb.Value_NumberValue); !isNumber || id != float64(int64(id)) {
		return nil, status.Error(codes.InvalidArgument, "id must be an integer")
	}

	var in item.UpdateItemRequest
	if err := decodeStruct(req, &in.CreateItemRequest); err != nil {
		return nil, err
	}
	in.ItemID = int64(id)

	res, err := s.update.Handle(ctx, &in)
	if err != nil {
		return nil, mapError(err)
	}
	return itemToStruct(*res)
}

func (s *itemService) DeleteItem(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	res, err := s.delete.Handle(ctx, &item.DeleteItemRequest{ItemID: req.GetValue()})
	if err != nil {
		return nil, mapError(err)
	}
	return structpb.NewStruct(map[string]any{"detail": res.Detail})
}

// decodeStruct goes through JSON so gRPC input gets the same coercion rules as HTTP bodies.
func decodeStruct(in *structpb.Struct, out any) error {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func itemToStruct(it domain.Item) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(map[string]any{
		"id":          it.ID,
		"name":        it.Name,
		"description": it.Description,
		"price":       it.Price,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode item")
	}
	return st, nil
}

func mapError(err error) error {
	var httpErr *httperror.Error
	if !errors.As(err, &httpErr) {
		return status.Error(codes.Internal, "internal error")
	}

	switch httpErr.Status {
	case http.StatusNotFound:
		return status.Error(codes.NotFound, httpErr.Message)
	case http.StatusUnprocessableEntity:
		return status.Error(codes.InvalidArgument, httpErr.Message)
	default:
		return status.Error(codes.Internal, httpErr.Message)
	}
}

type ItemServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewItemServiceClient(cc grpc.ClientConnInterface) *ItemServiceClient {
	return &ItemServiceClient{cc: cc}
}

func (c *ItemServiceClient) GetItem(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ItemService_GetItem_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ItemServiceClient) ListItems(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ItemService_ListItems_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ItemServiceClient) CreateItem(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ItemService_CreateItem_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ItemServiceClient) UpdateItem(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ItemService_UpdateItem_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ItemServiceClient) DeleteItem(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ItemService_DeleteItem_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
