package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// PeriodicScan es una corrida recurrente definida por una expresion cron.
type PeriodicScan struct {
	Cron    string
	Payload ScanPayload
}

// Periodic encola las corridas diarias y semanales.
type Periodic struct {
	scheduler *asynq.Scheduler
	queue     string
	entries   []string
	logger    *zap.Logger
}

func NewPeriodic(opt asynq.RedisClientOpt, queue string, loc *time.Location, logger *zap.Logger) *Periodic {
	if queue == "" {
		queue = "default"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Periodic{
		scheduler: asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: loc}),
		queue:     queue,
		logger:    logger,
	}
}

// Register agrega las corridas; un cron vacio desactiva esa entrada.
func (p *Periodic) Register(scans ...PeriodicScan) error {
	for _, scan := range scans {
		if scan.Cron == "" {
			continue
		}
		task, err := NewScanTask(scan.Payload)
		if err != nil {
			return err
		}
		id, err := p.scheduler.Register(scan.Cron, task, scanTaskOptions(p.queue)...)
		if err != nil {
			return fmt.Errorf("register %s scan %q: %w", scan.Payload.RunType, scan.Cron, err)
		}
		p.entries = append(p.entries, id)
		p.logger.Info("periodic scan registered",
			zap.String("entry_id", id),
			zap.String("run_type", scan.Payload.RunType),
			zap.String("cron", scan.Cron),
		)
	}
	return nil
}

// Entries devuelve los ids de las entradas registradas.
func (p *Periodic) Entries() []string {
	return p.entries
}

// Run arranca el scheduler y lo detiene cuando se cancela ctx.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
