package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"teardown-leads/internal/bootstrap"
	"teardown-leads/internal/config"
	"teardown-leads/internal/scheduler"
	"teardown-leads/internal/service"
)

// Corre el pipeline una vez, o lo encola para el worker con -enqueue.
func main() {
	runType := flag.String("type", "manual", "tipo de corrida: manual, daily, weekly")
	query := flag.String("query", "", "busqueda; por defecto SCAN_QUERY")
	location := flag.String("location", "", "ubicacion; por defecto SCAN_LOCATION")
	enqueue := flag.Bool("enqueue", false, "encola la corrida en asynq en vez de ejecutarla")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	req := service.RunRequest{RunType: *runType, Query: *query, Location: *location}
	if req.Query == "" {
		req.Query = cfg.ScanQuery
	}
	if req.Location == "" {
		req.Location = cfg.ScanLocation
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *enqueue {
		if cfg.RedisAddr == "" {
			logger.Fatal("REDIS_ADDR is required to enqueue scans")
		}
		client := scheduler.NewClient(scheduler.RedisOpt(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.QueueName)
		defer client.Close()
		id, err := client.EnqueueScan(ctx, scheduler.ScanPayload{RunType: req.RunType, Query: req.Query, Location: req.Location})
		if err != nil {
			logger.Fatal("enqueue scan", zap.Error(err))
		}
		logger.Info("scan enqueued", zap.String("task_id", id), zap.String("queue", cfg.QueueName))
		return
	}

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Close()

	report, err := app.Pipeline.Run(ctx, req)
	if err != nil {
		logger.Error("pipeline run failed", zap.String("scan_run_id", report.Run.ID), zap.Error(err))
		app.Close()
		os.Exit(1)
	}

	fields := []zap.Field{
		zap.String("scan_run_id", report.Run.ID),
		zap.Int("collected", report.Run.TotalListings),
		zap.Int("invalid", report.Invalid),
		zap.Int("new", report.Run.NewListings),
		zap.Int("opportunities", report.Run.Opportunities),
		zap.Int("high_value", report.Run.HighValue),
		zap.Int("alerted", report.Alerts.Alerted),
	}
	if report.Export != nil {
		fields = append(fields, zap.String("csv", report.Export.CSVPath), zap.String("geojson", report.Export.GeoJSONPath))
	}
	logger.Info("run summary", fields...)
}
