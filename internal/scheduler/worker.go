package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"teardown-leads/internal/service"
)

// ScanRunner ejecuta una corrida del pipeline.
type ScanRunner interface {
	Run(ctx context.Context, req service.RunRequest) (service.RunReport, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner ScanRunner
	logger *zap.Logger
}

func NewWorker(opt asynq.RedisClientOpt, queue string, runner ScanRunner, logger *zap.Logger) *Worker {
	if queue == "" {
		queue = "default"
	}
	server := asynq.NewServer(opt, asynq.Config{
		// Una corrida a la vez.
		Concurrency: 1,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		runner: runner,
		logger: logger,
	}
	mux.HandleFunc(TaskScanRun, w.handleScan)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.logger.Error("scan worker stopped", zap.Error(err))
	}
}

func (w *Worker) handleScan(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScanPayload(task)
	if err != nil {
		return fmt.Errorf("decode scan payload: %v: %w", err, asynq.SkipRetry)
	}

	report, err := w.runner.Run(ctx, service.RunRequest{
		RunType:  payload.RunType,
		Query:    payload.Query,
		Location: payload.Location,
	})
	if err != nil {
		return err
	}
	w.logger.Info("scheduled scan finished",
		zap.String("scan_run_id", report.Run.ID),
		zap.String("run_type", report.Run.RunType),
		zap.Int("opportunities", report.Run.Opportunities),
		zap.Int("alerted", report.Alerts.Alerted),
	)
	return nil
}
