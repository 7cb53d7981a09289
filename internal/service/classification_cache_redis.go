package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"teardown-leads/internal/scoring"
)

// ClassificationCache guarda clasificaciones por hash de contexto.
type ClassificationCache interface {
	Get(ctx context.Context, key string) (scoring.Classification, bool)
	Set(ctx context.Context, key string, c scoring.Classification)
}

type noopClassificationCache struct{}

func (noopClassificationCache) Get(context.Context, string) (scoring.Classification, bool) {
	return scoring.Classification{}, false
}

func (noopClassificationCache) Set(context.Context, string, scoring.Classification) {}

type redisGetSetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisClassificationCache struct {
	client redisGetSetter
	ttl    time.Duration
	prefix string
}

// NewRedisClassificationCache devuelve nil si no hay cliente; el servicio cae a no-op.
func NewRedisClassificationCache(client *redis.Client, ttl time.Duration) ClassificationCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisClassificationCache{
		client: client,
		ttl:    ttl,
		prefix: "classify:ctx:",
	}
}

// Get falla abierto: cualquier error de redis se trata como miss.
func (c *redisClassificationCache) Get(ctx context.Context, key string) (scoring.Classification, bool) {
	if c == nil || c.client == nil || key == "" {
		return scoring.Classification{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return scoring.Classification{}, false
	}
	var out scoring.Classification
	if err := json.Unmarshal(raw, &out); err != nil {
		return scoring.Classification{}, false
	}
	return out, true
}

// Set no cachea fallos para que la siguiente corrida reintente.
func (c *redisClassificationCache) Set(ctx context.Context, key string, cl scoring.Classification) {
	if c == nil || c.client == nil || key == "" || cl.Label == scoring.LabelUnknown {
		return
	}
	data, err := json.Marshal(cl)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}
