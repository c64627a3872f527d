package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"flightline/internal/notifier"
	"flightline/pkg/config"
	"flightline/pkg/kafka"
	kafka_config "flightline/pkg/kafka/config"
)

const ServiceName = "notifier"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)

	consumerHandler := notifier.NewConsumerHandler(cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafka_config.Load(),
		cfg.BookingEventsTopic,
		cfg.NotifierGroupID,
		cfg.BookingEventsDLQ,
		consumerHandler.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events consumer", "error", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close consumer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting Notifier service",
		"topic", cfg.BookingEventsTopic,
		"group_id", cfg.NotifierGroupID,
	)

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Fatal("Consumer stopped unexpectedly", "error", err)
	}
	cfg.Log.Info("Notifier service stopped")
}
