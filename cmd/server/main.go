package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ogurasousui/hr-attendance/internal/adapters/cache"
	"github.com/ogurasousui/hr-attendance/internal/adapters/http/handler"
	"github.com/ogurasousui/hr-attendance/internal/adapters/http/middleware"
	"github.com/ogurasousui/hr-attendance/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance/internal/core/employee"
	"github.com/ogurasousui/hr-attendance/internal/platform/config"
	pg "github.com/ogurasousui/hr-attendance/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-attendance/internal/platform/logging"
	"github.com/ogurasousui/hr-attendance/internal/platform/metrics"
	redisplatform "github.com/ogurasousui/hr-attendance/internal/platform/redis"
	"github.com/ogurasousui/hr-attendance/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.EffectivePath(""))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database pool: %w", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	appMetrics, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	healthChecks := []handler.HealthCheck{
		{Name: "database", Check: func(ctx context.Context) error { return pg.Healthy(ctx, dbPool) }},
	}
	attendanceOpts := []attendance.Option{
		attendance.WithLogger(logger),
		attendance.WithImportObserver(appMetrics),
	}

	if redisClient := redisplatform.NewClient(cfg.Redis); redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		statsCache := cache.NewStatisticsCache(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.StatsTTL)
		attendanceOpts = append(attendanceOpts, attendance.WithStatisticsCache(statsCache))
		healthChecks = append(healthChecks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisplatform.Healthy(ctx, redisClient) },
		})
	} else {
		logger.Info("redis address not configured; statistics cache disabled")
	}

	employeeSvc := employee.NewService(postgres.NewEmployeeRepository(dbPool), txManager)
	attendanceSvc := attendance.NewService(postgres.NewTimeEntryRepository(dbPool), employeeSvc, txManager, attendanceOpts...)

	if !cfg.Auth.Enabled() {
		logger.Warn("auth.jwt_secret is empty; API requests are not authenticated")
	}

	router := handler.NewRouter(handler.RouterConfig{
		TimeEntries:    handler.NewTimeEntryHandler(attendanceSvc, handler.WithMaxUploadBytes(cfg.Import.MaxUploadBytes)),
		Employees:      handler.NewEmployeeHandler(employeeSvc),
		Health:         handler.NewHealthHandler(healthChecks...),
		Auth:           middleware.NewAuth(cfg.Auth),
		Logger:         logger,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		Middlewares:    []gin.HandlerFunc{appMetrics.GinMiddleware()},
		MetricsHandler: promhttp.Handler(),
	})

	httpServer := server.NewHTTP(cfg.HTTP, router, logger)
	grpcServer := server.NewGRPC(cfg.Server.ListenAddr, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return grpcServer.Run(gctx) })

	return g.Wait()
}
