package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/plotmarket/plot-service/internal/api/http"
	"github.com/plotmarket/plot-service/internal/api/http/handlers"
	"github.com/plotmarket/plot-service/internal/auth"
	"github.com/plotmarket/plot-service/internal/config"
	"github.com/plotmarket/plot-service/internal/events"
	"github.com/plotmarket/plot-service/internal/observability"
	"github.com/plotmarket/plot-service/internal/persistence"
	"github.com/plotmarket/plot-service/internal/repository"
	"github.com/plotmarket/plot-service/internal/service"
	"github.com/plotmarket/plot-service/internal/storage"
	"github.com/plotmarket/plot-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	listingRepo := repository.NewListingRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
	})
	statsService := service.NewStatsService(redis, listingRepo, logger)
	listingService := service.NewListingService(service.ListingDependencies{
		ListingRepo: listingRepo,
		UserRepo:    userRepo,
		Stats:       statsService,
		Dispatcher:  dispatcher,
	})
	uploadService := service.NewUploadService(store, cfg.Storage, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)

	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Listings:       handlers.NewListingsHandler(listingService),
		Uploads:        handlers.NewUploadsHandler(uploadService),
		AuthMiddleware: authMiddleware,
	})

	worker.StartNotificationWorker(notificationService)
	worker.StartStatsFlusher(ctx, statsService, cfg.Stats.FlushInterval(), logger)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
