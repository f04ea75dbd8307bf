package tracing

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
)

const tracerName = "items"

var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Init installs the global tracer provider and returns its shutdown function.
// An empty endpoint leaves tracing disabled and returns nil.
func Init(serviceName, endpoint string) func() {
	if endpoint == "" {
		return nil
	}
	if u, err := parseOTLPEndpoint(endpoint); err == nil {
		endpoint = u
	}

	ctx := context.Background()
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		zap.L().Warn("tracing disabled: exporter setup failed", zap.Error(err))
		return nil
	}

	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceNameKey.String(serviceName)),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)

	return func() { _ = tp.Shutdown(ctx) }
}

// Middleware extracts the incoming trace context and wraps the request in a server span.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tracer := otel.Tracer(tracerName)

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}

		ctx := propagator.Extract(userCtx, headerCarrier{c: c})
		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path())
		defer span.End()

		c.SetUserContext(ctx)
		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", c.Route().Path),
		)
		if err != nil {
			span.RecordError(err)
		}
		if status >= fiber.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		return err
	}
}

type headerCarrier struct {
	c *fiber.Ctx
}

func (h headerCarrier) Get(key string) string {
	return h.c.Get(key)
}

func (h headerCarrier) Set(key, value string) {
	h.c.Request().Header.Set(key, value)
}

func (h headerCarrier) Keys() []string {
	headers := h.c.GetReqHeaders()
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	return keys
}

func parseOTLPEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "4318"
	}
	return host + ":" + port, nil
}
