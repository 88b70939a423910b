package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/crm"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/repository/memory"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	var store repository.Store
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if _, err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		store = repository.NewStore(pg.Pool)
	} else {
		logger.Warn("running with in-memory store; data is lost on exit")
		store = memory.NewStore()
	}

	deps := []handlers.Dependency{{Name: "store", Pinger: store}}

	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if rdb := persistence.NewRedis(ctx, cfg.Redis, logger); rdb != nil {
		defer rdb.Close()
		revoker = auth.NewRedisRevoker(rdb.Client, cfg.Redis.KeyPrefix)
		deps = append(deps, handlers.Dependency{Name: "redis", Pinger: rdb})
	}

	var syncer crm.Syncer = crm.Disabled{}
	if cfg.CRM.Enabled() {
		syncer = crm.NewHTTPClient(cfg.CRM.BaseURL, cfg.CRM.Timeout())
		logger.Info("crm sync enabled", zap.String("base_url", cfg.CRM.BaseURL), zap.Duration("timeout", cfg.CRM.Timeout()))
	} else {
		logger.Info("crm sync disabled")
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Store:   store,
		Tokens:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		Revoker: revoker,
		Logger:  logger,
	})
	customerService := service.NewCustomerService(service.CustomerDependencies{
		Store:      store,
		Syncer:     syncer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Syncer:     syncer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	dashboardService := service.NewDashboardService(store)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, deps...),
		Auth:           handlers.NewAuthHandler(authService),
		Customers:      handlers.NewCustomersHandler(customerService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Repos().Users, authService.Revoker()),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-waitForShutdown():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	return app.Shutdown()
}

func waitForShutdown() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
