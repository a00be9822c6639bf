package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/api/http"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/api/http/handlers"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/auth"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/config"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/idgen"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/observability"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/persistence"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/ratelimit"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/repository"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/service"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/storage"
	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/worker"
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

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	counterRepo := repository.NewCounterRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	idGenerator := idgen.NewGenerator(counterRepo)

	fileStore, err := storage.NewLocalStore(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init file storage", zap.Error(err))
	}

	notificationService := service.NewNotificationService(notificationRepo, accountRepo, logger, metrics)
	notificationWorker := worker.NewNotificationWorker(notificationService, logger, cfg.Notification.QueueSize)
	notificationWorker.Start()

	accountService := service.NewAccountService(cfg.Auth, service.AccountDependencies{
		AccountRepo: accountRepo,
		IDGenerator: idGenerator,
		Logger:      logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:       ticketRepo,
		NotificationRepo: notificationRepo,
		IDGenerator:      idGenerator,
		Publisher:        notificationWorker,
		Logger:           logger,
	})

	resetLimiter := ratelimit.NewLimiter(redis.Client, "pwdreset",
		cfg.Notification.ResetRequestsPerWindow, cfg.Notification.ResetWindow())
	recoveryService := service.NewRecoveryService(cfg, service.RecoveryDependencies{
		AccountRepo: accountRepo,
		Limiter:     resetLimiter,
		Mailer:      service.NewLogMailer(logger, cfg.Notification.EmailFrom),
		Logger:      logger,
	})

	if err := accountService.EnsureBootstrapAdmin(ctx); err != nil {
		logger.Fatal("failed to ensure bootstrap administrator", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(accountService.TokenManager(), accountRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	app.Static(cfg.Storage.PublicBaseURL, cfg.Storage.UploadDir)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Accounts:       handlers.NewAccountsHandler(accountService, recoveryService),
		Tickets:        handlers.NewTicketsHandler(ticketService, fileStore),
		Notifications:  handlers.NewNotificationsHandler(notificationRepo),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	notificationWorker.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
