package main

import (
	"github.com/joho/godotenv"

	"flightline/internal/bookings/handler"
	"flightline/internal/bookings/repository"
	"flightline/internal/bookings/service"
	"flightline/internal/bookings/validator"
	"flightline/internal/notifier"
	"flightline/pkg/app"
	"flightline/pkg/client"
	"flightline/pkg/config"
	"flightline/pkg/kafka"
	kafka_config "flightline/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")
	schedulerService := initServices(cfg)
	publisher := initPublisher(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(schedulerService, publisher, cfg))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.SchedulerService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	registry := client.NewFleetClient(cfg.FleetBaseURL)

	schedulerService := service.NewSchedulerService(
		bookingRepo,
		lockRepo,
		registry,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Scheduler service initialized",
		"database", cfg.MongoDatabaseName,
		"fleet_base_url", cfg.FleetBaseURL,
	)
	return schedulerService
}

func initPublisher(cfg *config.Config) notifier.Publisher {
	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.BookingEventsTopic, cfg.BookingEventsDLQ)
	if err != nil {
		cfg.Log.Warn("Booking events disabled, producer unavailable", "error", err)
		return notifier.NoopPublisher{}
	}
	return notifier.NewKafkaPublisher(producer, cfg.Log)
}
