package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/honai-puma/honai-puma/internal/app"
	jobmetrics "github.com/honai-puma/honai-puma/internal/jobs"
	"github.com/honai-puma/honai-puma/internal/platform/cache"
	"github.com/honai-puma/honai-puma/internal/platform/db"
	"github.com/honai-puma/honai-puma/internal/report"
	"github.com/honai-puma/honai-puma/internal/territory"
	"github.com/honai-puma/honai-puma/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	territoryRepo := territory.NewRepository(pool)
	reportRepo := report.NewRepository(pool)
	reportCache := report.NewCache(redisClient, cfg.ReportCacheTTL)
	engine := report.NewEngine(reportRepo, reportRepo, territoryRepo)
	reportService := report.NewService(report.NewRegistry(), engine, territoryRepo, reportCache, cfg.RegionalName)

	metrics := jobmetrics.NewMetrics(nil)
	warmupJob := jobs.NewReportWarmupJob(reportService, logger, metrics)
	bumpJob := jobs.NewCacheBumpJob(reportCache, logger, metrics)

	warmupTask, err := jobs.NewReportWarmupTask(jobs.ReportWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskCacheBump, Handler: bumpJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// Warm every metric shortly after the nightly warehouse load.
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
