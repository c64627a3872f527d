package main

import (
	"github.com/joho/godotenv"

	"flightline/internal/fleet/handler"
	"flightline/internal/fleet/repository"
	"flightline/internal/fleet/service"
	"flightline/internal/fleet/validator"
	"flightline/pkg/app"
	"flightline/pkg/config"
)

const ServiceName = "fleet"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Fleet registry service")
	fleetService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewFleetHandler(fleetService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.FleetService {
	fleetValidator := validator.NewFleetValidator(cfg.Log)
	aircraftRepo := repository.NewMongoAircraftRepository(cfg)
	instructorRepo := repository.NewMongoInstructorRepository(cfg)

	fleetService := service.NewFleetService(
		aircraftRepo,
		instructorRepo,
		fleetValidator,
		cfg,
	)

	cfg.Log.Info("Fleet service initialized", "database", cfg.MongoDatabaseName)
	return fleetService
}
