package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movie-booking/cmd"
	"movie-booking/internal/data/memory"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/inventory"
	"movie-booking/internal/usecase"
	"movie-booking/internal/wire"
	"movie-booking/pkg/cache"
	"movie-booking/pkg/database"
	"movie-booking/pkg/messaging"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/observability"
	"movie-booking/pkg/utils"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("movie-booking: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	tel, err := observability.Setup(ctx, config.Tracing, config.App.Name, config.App.Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	// Initialize logger
	var extra []zapcore.Core
	if tel.LogCore != nil {
		extra = append(extra, tel.LogCore)
	}
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug, extra...)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using production logger.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("version", config.App.Version),
		zap.String("port", config.App.Port),
		zap.String("storage", config.Storage.Driver),
		zap.Bool("debug", config.App.Debug),
		zap.Bool("telemetry", tel.Enabled()),
	)

	repo, closeStorage, err := openStorage(config, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	m := metrics.New()
	ledgerOpts := []inventory.Option{inventory.WithMetrics(m)}
	deps := usecase.Deps{
		Tokens:  utils.NewTokenManager(config.JWT),
		Metrics: m,
	}

	if config.Redis.Enabled() {
		client, err := cache.NewClient(ctx, config.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		availability := cache.NewAvailabilityCache(client, config.Redis.CacheTTL)
		locker := inventory.NewRedisLocker(cache.NewLockManager(client), config.Redis.LockTTL, m, logger)
		ledgerOpts = append(ledgerOpts, inventory.WithLocker(locker), inventory.WithAvailabilityCache(availability))
		deps.Availability = availability
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	}

	if config.RabbitMQ.URL != "" {
		publisher, err := messaging.NewPublisher(config.RabbitMQ.URL, logger,
			messaging.QueueBookingCreated, messaging.QueueBookingCancelled)
		if err != nil {
			return err
		}
		defer publisher.Close()

		deps.Publisher = publisher
		logger.Info("RabbitMQ connected")
	}

	deps.Ledger = inventory.NewLedger(repo.Showtime, repo.Tx, logger, ledgerOpts...)
	service := usecase.NewService(repo, config, deps, logger)

	if config.App.SeedMovies {
		n, err := service.Movie.SeedMovies(ctx)
		if err != nil {
			return err
		}
		logger.Info("Movie catalog seeded", zap.Int("inserted", n))
	}

	// Wire all dependencies
	app := wire.Wiring(service, deps.Tokens, m, config, logger)

	return cmd.APIServer(ctx, app.Router, config.App.Port, logger)
}

// openStorage connects the configured storage driver.
func openStorage(config *utils.Config, logger *zap.Logger) (*repository.Repository, func(), error) {
	if config.Storage.Driver == utils.StorageDriverMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepository(), func() {}, nil
	}

	if config.Database.AutoMigrate {
		if err := database.RunMigrations(config.Database, logger); err != nil {
			return nil, nil, err
		}
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connected successfully")

	return repository.NewRepository(db, logger), db.Close, nil
}
