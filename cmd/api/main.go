package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/store-management/internal/api/http"
	"github.com/spec-kit/store-management/internal/api/http/handlers"
	"github.com/spec-kit/store-management/internal/auth"
	"github.com/spec-kit/store-management/internal/config"
	"github.com/spec-kit/store-management/internal/events"
	"github.com/spec-kit/store-management/internal/observability"
	"github.com/spec-kit/store-management/internal/persistence"
	"github.com/spec-kit/store-management/internal/repository"
	"github.com/spec-kit/store-management/internal/service"
	"github.com/spec-kit/store-management/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	if cfg.Seed.Enabled && pool != nil {
		if err := persistence.SeedInitialData(ctx, userRepo, productRepo, cfg.Auth.BcryptCost, logger); err != nil {
			logger.Fatal("failed to seed initial data", zap.Error(err))
		}
	}

	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, redis, logger)
	worker.StartAuditWorker(auditService)

	authService := service.NewAuthService(cfg.Auth, userRepo, dispatcher, logger)
	userService := service.NewUserService(userRepo, dispatcher, logger)
	productService := service.NewProductService(productRepo, redis, dispatcher, logger)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), httptransport.PublicPaths)
	policy := auth.NewPolicy(auth.DefaultRules())

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Products:       handlers.NewProductsHandler(productService),
		AuthMiddleware: authMiddleware,
		Policy:         policy,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
