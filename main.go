package main

import (
	"context"
	"errors"
	"fmt"
	"items/app"
	"items/app/item"
	"items/domain"
	"items/infra/rabbitmq"
	"items/infra/store"
	"items/internal/middleware"
	"items/pkg/config"
	"items/pkg/events"
	"items/pkg/httperror"
	"items/pkg/logger"
	"items/pkg/metrics"
	"items/pkg/requestid"
	"items/pkg/tracing"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res], status int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.UnprocessableEntity(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.UnprocessableEntity(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		ctx := c.UserContext()

		res, err := handler.Handle(ctx, &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.Status(status).JSON(res)
	}
}

type dependencies struct {
	serviceName string
	repository  item.Repository
	publisher   events.Publisher
}

func newApp(deps dependencies) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:      deps.serviceName,
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
	})

	server.Use(recover.New())
	server.Use(middleware.NewRequestIDMiddleware())
	server.Use(tracing.Middleware())
	server.Use(metrics.Middleware)

	server.Get(metrics.Path, metrics.Handler())

	server.Get("/", handle[app.HealthRequest, app.HealthResponse](app.NewHealthHandler(deps.serviceName), fiber.StatusOK))

	createItemHandler := item.NewCreateItemHandler(deps.repository, deps.publisher)
	getItemsHandler := item.NewGetItemsHandler(deps.repository)
	getItemHandler := item.NewGetItemHandler(deps.repository)
	updateItemHandler := item.NewUpdateItemHandler(deps.repository, deps.publisher)
	deleteItemHandler := item.NewDeleteItemHandler(deps.repository, deps.publisher)

	items := server.Group("/items")
	items.Post("", handle[item.CreateItemRequest, domain.Item](createItemHandler, fiber.StatusCreated))
	items.Get("", handle[item.GetItemsRequest, item.GetItemsResponse](getItemsHandler, fiber.StatusOK))
	items.Get("/:id", handle[item.GetItemRequest, domain.Item](getItemHandler, fiber.StatusOK))
	items.Put("/:id", handle[item.UpdateItemRequest, domain.Item](updateItemHandler, fiber.StatusOK))
	items.Delete("/:id", handle[item.DeleteItemRequest, item.DeleteItemResponse](deleteItemHandler, fiber.StatusOK))

	return server
}

func main() {
	appConfig := config.Read()
	syncLogger := logger.Init(appConfig.LogFormat)
	defer syncLogger()

	zap.L().Info("app starting...")
	zap.L().Info("app config",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("port", appConfig.Port),
		zap.String("databaseDriver", appConfig.DatabaseDriver),
		zap.Bool("storeORM", appConfig.StoreORM),
	)

	if shutdownTracing := tracing.Init(appConfig.ServiceName, appConfig.OTLPEndpoint); shutdownTracing != nil {
		defer shutdownTracing()
	}

	repository, err := store.Open(context.Background(), appConfig)
	if err != nil {
		zap.L().Fatal("Failed to open item store", zap.Error(err))
	}
	defer repository.Close()

	var publisher events.Publisher
	if appConfig.RabbitMQURL != "" {
		rabbitPublisher, err := rabbitmq.NewRabbitMQPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
		if err != nil {
			zap.L().Error("Event publishing disabled", zap.Error(err))
		} else {
			publisher = rabbitPublisher
			defer rabbitPublisher.Close()
		}
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	if reporter, ok := repository.(poolReporter); ok {
		go monitorPool(monitorCtx, reporter, 30*time.Second)
	}

	server := newApp(dependencies{
		serviceName: appConfig.ServiceName,
		repository:  repository,
		publisher:   publisher,
	})

	go func() {
		if err := server.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(server)
}

type poolReporter interface {
	PoolStats() map[string]interface{}
}

func monitorPool(ctx context.Context, reporter poolReporter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := reporter.PoolStats()
			zap.L().Info("Connection pool stats",
				zap.Int("max_open", stats["max_open_connections"].(int)),
				zap.Int("open", stats["open_connections"].(int)),
				zap.Int("in_use", stats["in_use"].(int)),
				zap.Int("idle", stats["idle"].(int)),
				zap.Int64("wait_count", stats["wait_count"].(int64)),
				zap.Int64("wait_duration_ms", stats["wait_duration_ms"].(int64)),
			)
		}
	}
}

func gracefulShutdown(server *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := server.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

func writeError(c *fiber.Ctx, err error) error {
	reqID := requestid.FromContext(c.UserContext())

	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.String("requestId", reqID), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.String("requestId", reqID), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber validation error", zap.String("message", fiberErr.Message), zap.String("requestId", reqID), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.String("requestId", reqID), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
