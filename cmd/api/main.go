package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/teamhub/team-service/internal/api/http"
	"github.com/teamhub/team-service/internal/api/http/handlers"
	"github.com/teamhub/team-service/internal/auth"
	"github.com/teamhub/team-service/internal/config"
	"github.com/teamhub/team-service/internal/events"
	"github.com/teamhub/team-service/internal/observability"
	"github.com/teamhub/team-service/internal/persistence"
	"github.com/teamhub/team-service/internal/repository"
	"github.com/teamhub/team-service/internal/service"
	"github.com/teamhub/team-service/internal/storage"
	"github.com/teamhub/team-service/internal/validation"
	"github.com/teamhub/team-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	blobs, err := storage.NewFSStore(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init blob storage", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pool := pg.PoolHandle()
	store := repository.NewStore(pool)
	txRunner := repository.NewTxRunner(pool)
	validator := validation.New()

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(logger, 0)
	service.NewNotificationService(notifications.Dispatcher(), logger, cfg.Notification).RegisterHandlers()
	notifications.Attach(dispatcher, events.EventActivityRecorded, events.EventInvitationCreated)
	workerCtx, stopWorker := context.WithCancel(ctx)
	go notifications.Run(workerCtx)

	activity := service.NewActivityRecorder(dispatcher, metrics, logger)

	teamService := service.NewTeamService(service.TeamDependencies{
		Store:      store,
		Tx:         txRunner,
		Blobs:      blobs,
		Validator:  validator,
		Activity:   activity,
		Logger:     logger,
		Pagination: cfg.Pagination,
	})
	organizationService := service.NewOrganizationService(service.OrganizationDependencies{
		Store:     store,
		Tx:        txRunner,
		Blobs:     blobs,
		Validator: validator,
		Activity:  activity,
		Logger:    logger,
	})
	invitationService := service.NewInvitationService(*cfg, service.InvitationDependencies{
		Store:      store,
		Tx:         txRunner,
		Invites:    repository.NewRedisInvitationStore(redis.Client),
		Dispatcher: dispatcher,
		Validator:  validator,
		Activity:   activity,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth)
	authMiddleware := auth.NewAuthMiddleware(tokens, store.Users())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Storage.MaxUploadBytes + 1<<20,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	if strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		app.Static(cfg.Storage.PublicBaseURL, blobs.Root())
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Teams:          handlers.NewTeamHandler(teamService, cfg.Storage.MaxUploadBytes),
		Organizations:  handlers.NewOrganizationHandler(organizationService, invitationService, cfg.Storage.MaxUploadBytes),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	stopWorker()
	notifications.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
