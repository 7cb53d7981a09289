package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

// Una corrida completa puede tardar por el rate limit del LLM.
const scanTaskTimeout = 45 * time.Minute

type Client struct {
	client *asynq.Client
	queue  string
}

// RedisOpt arma la conexion de asynq con los mismos datos que usa el cache.
func RedisOpt(addr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}
}

func NewClient(opt asynq.RedisClientOpt, queue string) *Client {
	if queue == "" {
		queue = "default"
	}
	return &Client{client: asynq.NewClient(opt), queue: queue}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueScan encola una corrida para que la tome el worker.
func (c *Client) EnqueueScan(ctx context.Context, payload ScanPayload) (string, error) {
	task, err := NewScanTask(payload)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, scanTaskOptions(c.queue)...)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func scanTaskOptions(queue string) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(queue),
		asynq.MaxRetry(2),
		asynq.Timeout(scanTaskTimeout),
	}
}
