package main

import (
	"context"
	"errors"
	"items/infra/rabbitmq"
	"items/internal/consumers"
	"items/pkg/aws"
	"items/pkg/config"
	"items/pkg/events"
	"items/pkg/logger"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	appConfig := config.Read()
	syncLogger := logger.Init(appConfig.LogFormat)
	defer syncLogger()

	zap.L().Info("Items worker starting...",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("bucket", appConfig.AWSBucket),
	)

	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for worker service")
	}
	if appConfig.AWSBucket == "" {
		zap.L().Fatal("AWS_BUCKET is required for worker service")
	}

	bucket := aws.NewS3Bucket(appConfig)
	defer bucket.Close()

	itemHandler := consumers.NewItemEventHandler(bucket)

	// Queue name: {service}.{purpose}.{version}
	itemConsumerConfig := rabbitmq.ConsumerConfig{
		Exchange:       events.ItemExchange,
		QueueName:      "items.mirror.v1",
		RoutingKeys:    []string{"item.*.v1"},
		ServiceName:    appConfig.ServiceName,
		PrefetchCount:  10,
		WorkerPoolSize: 4,
	}

	itemConsumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, itemConsumerConfig)
	if err != nil {
		zap.L().Fatal("Failed to create item consumer", zap.Error(err))
	}
	defer itemConsumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		zap.L().Info("Starting item event consumer...")
		if err := itemConsumer.Consume(ctx, itemHandler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			zap.L().Error("Item consumer error", zap.Error(err))
		}
	}()

	zap.L().Info("Worker service started. Waiting for events...",
		zap.String("exchange", events.ItemExchange),
	)

	select {
	case <-sigChan:
		zap.L().Info("Shutdown signal received, stopping worker service...")
	case <-done:
		zap.L().Warn("Item consumer stopped")
	}
	cancel()
	<-done

	zap.L().Info("Worker service stopped gracefully")
}
