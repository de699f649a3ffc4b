package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/facilityops/helpdesk-gateway/internal/api/http"
	"github.com/facilityops/helpdesk-gateway/internal/api/http/handlers"
	"github.com/facilityops/helpdesk-gateway/internal/auth"
	"github.com/facilityops/helpdesk-gateway/internal/backend"
	"github.com/facilityops/helpdesk-gateway/internal/config"
	"github.com/facilityops/helpdesk-gateway/internal/dispatch"
	"github.com/facilityops/helpdesk-gateway/internal/events"
	"github.com/facilityops/helpdesk-gateway/internal/observability"
	"github.com/facilityops/helpdesk-gateway/internal/persistence"
	"github.com/facilityops/helpdesk-gateway/internal/repository"
	"github.com/facilityops/helpdesk-gateway/internal/service"
	"github.com/facilityops/helpdesk-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics(cfg.App.Name)
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(ctx, notificationService, logger)

	ticketAPI := backend.NewClient(cfg.Backend)
	sessionRepo := repository.NewSessionRepository(redis.Handle(), cfg.Redis.KeyPrefix)
	journalRepo := repository.NewDispatchJournalRepository(pg.PoolHandle())

	sessionService := service.NewSessionService(service.SessionDependencies{
		Identity:   ticketAPI,
		Sessions:   sessionRepo,
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret),
		Dispatcher: dispatcher,
		TTL:        cfg.Auth.SessionTTL(),
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		API:        ticketAPI,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	actionService := service.NewActionService(service.ActionDependencies{
		Tickets: ticketAPI,
		Dispatcher: dispatch.NewDispatcher(dispatch.Dependencies{
			Sender:  ticketAPI,
			Journal: journalRepo,
			Events:  dispatcher,
			Metrics: metrics,
			Logger:  logger,
		}),
		Logger: logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Sessions:       handlers.NewSessionHandler(sessionService, cfg.Auth),
		Tickets:        handlers.NewTicketsHandler(ticketService, actionService),
		Dashboards:     handlers.NewDashboardHandler(ticketService, journalRepo),
		AuthMiddleware: auth.NewMiddleware(sessionService, cfg.Auth.CookieName),
		Metrics:        metrics.Handler(),
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
