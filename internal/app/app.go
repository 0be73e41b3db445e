package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pulsometrics/analytics-server/internal/config"
	"github.com/pulsometrics/analytics-server/internal/httpapi"
	"github.com/pulsometrics/analytics-server/internal/repository"
	"github.com/pulsometrics/analytics-server/internal/scheduler"
	"github.com/pulsometrics/analytics-server/internal/service"
	"github.com/pulsometrics/analytics-server/pkg/cache"
	dbbuilder "github.com/pulsometrics/analytics-server/pkg/database"
	httpsrv "github.com/pulsometrics/analytics-server/pkg/http/server"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	httpServer *httpsrv.Server
	scheduler  *scheduler.Scheduler
	cfg        *config.Config
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	if err := repository.Migrate(dbPool); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
	)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	surveyRepo := repository.NewSurveyRepository(dbPool)
	responseRepo := repository.NewResponseRepository(dbPool)
	userRepo := repository.NewUserRepository(dbPool)
	reportRepo := repository.NewReportRepository(dbPool)
	locationRepo := repository.NewLocationRepository(dbPool)

	analyticsService := service.NewAnalyticsService(surveyRepo, responseRepo, logger)
	resultsService := service.NewResultsService(surveyRepo, responseRepo, logger)
	quotaService := service.NewQuotaService(surveyRepo, responseRepo, userRepo, logger)
	surveyService := service.NewSurveyService(surveyRepo, responseRepo, quotaService, logger)
	reportService := service.NewReportService(reportRepo, surveyRepo, responseRepo, logger)
	locationService := service.NewLocationService(locationRepo, surveyRepo, responseRepo, logger)

	handlers := httpapi.NewHandlers(analyticsService, resultsService, surveyService, locationService, reportService, cacheClient, logger, cfg.CacheTTL)

	httpServer, err := httpsrv.New(
		httpsrv.WithPort(cfg.HTTPPort),
		httpsrv.WithLogger(logger),
		httpsrv.WithLogging(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http server: %w", err)
	}
	handlers.Register(httpServer.App())

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.New(reportService, logger)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		httpServer: httpServer,
		scheduler:  sched,
		cfg:        cfg,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.httpServer.Start()

	if a.scheduler != nil {
		if err := a.scheduler.Start(a.cfg.SchedulerSpec); err != nil {
			return fmt.Errorf("scheduler start failed: %w", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http shutdown error", zap.Error(err))
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed successfully")

	_ = a.logger.Sync()
	return nil
}
