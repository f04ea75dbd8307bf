package requestid

import (
	"context"

	"github.com/google/uuid"
)

const Header = "X-Request-ID"

type ctxKey struct{}

var key = ctxKey{}

func FromContext(ctx context.Context) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key, id)
}

func Generate() string {
	return uuid.NewString()
}
