package main

import (
	"context"
	"items/infra/grpc"
	"items/infra/rabbitmq"
	"items/infra/store"
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

	zap.L().Info("Items gRPC service starting...",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("databaseDriver", appConfig.DatabaseDriver),
		zap.Bool("storeORM", appConfig.StoreORM),
	)

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

	grpcServer, err := grpc.NewServer(appConfig.GRPCPort, grpc.NewItemServiceServer(repository, publisher))
	if err != nil {
		zap.L().Fatal("Failed to create grpc server", zap.Error(err))
	}

	zap.L().Info("starting gRPC server...", zap.String("port", appConfig.GRPCPort))
	go func() {
		if err := grpcServer.Start(); err != nil {
			zap.L().Error("Failed to start grpc server", zap.Error(err))
			os.Exit(1)
		}
	}()

	gracefulShutdown(grpcServer)
}

func gracefulShutdown(grpcServer *grpc.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	grpcServer.GracefulStop()

	zap.L().Info("Server gracefully stopped")
}
