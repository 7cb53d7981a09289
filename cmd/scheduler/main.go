package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"teardown-leads/internal/bootstrap"
	"teardown-leads/internal/config"
	"teardown-leads/internal/scheduler"
)

// Worker de asynq mas el scheduler de corridas diarias y semanales.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required for the scheduler")
	}
	loc, err := time.LoadLocation(cfg.ScanTimezone)
	if err != nil {
		logger.Fatal("scan timezone", zap.String("tz", cfg.ScanTimezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Close()

	opt := scheduler.RedisOpt(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	worker := scheduler.NewWorker(opt, cfg.QueueName, app.Pipeline, logger)

	periodic := scheduler.NewPeriodic(opt, cfg.QueueName, loc, logger)
	if err := periodic.Register(
		scheduler.PeriodicScan{Cron: cfg.ScanCron, Payload: scheduler.ScanPayload{RunType: "daily", Query: cfg.ScanQuery, Location: cfg.ScanLocation}},
		scheduler.PeriodicScan{Cron: cfg.WeeklyCron, Payload: scheduler.ScanPayload{RunType: "weekly", Query: cfg.ScanQuery, Location: cfg.ScanLocation}},
	); err != nil {
		logger.Fatal("register periodic scans", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return periodic.Run(gctx)
	})

	logger.Info("scheduler started", zap.String("queue", cfg.QueueName), zap.Int("entries", len(periodic.Entries())))
	if err := g.Wait(); err != nil {
		logger.Error("scheduler stopped", zap.Error(err))
	}
}
