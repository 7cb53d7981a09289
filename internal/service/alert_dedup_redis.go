package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"teardown-leads/internal/domain"
)

// AlertDeduper decide si un listing puede alertarse otra vez.
type AlertDeduper interface {
	ShouldAlert(ctx context.Context, address string) bool
	// Release libera la reserva de ShouldAlert cuando la alerta no llego a ningun canal.
	Release(ctx context.Context, address string)
}

type redisAlertDeduper struct {
	client redisSetNXer
	ttl    time.Duration
	prefix string
}

type redisSetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func NewRedisAlertDeduper(client *redis.Client, ttl time.Duration) AlertDeduper {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &redisAlertDeduper{
		client: client,
		ttl:    ttl,
		prefix: "alert:dedup:",
	}
}

// ShouldAlert reserva la clave de forma atomica; si redis falla, deja pasar la alerta.
func (d *redisAlertDeduper) ShouldAlert(ctx context.Context, address string) bool {
	if d == nil || d.client == nil {
		return true
	}
	normalized := domain.NormalizeAddress(address)
	if normalized == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	ok, err := d.client.SetNX(ctx, d.key(normalized), "1", d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release borra la clave; un error de redis solo deja la reserva hasta que venza el TTL.
func (d *redisAlertDeduper) Release(ctx context.Context, address string) {
	if d == nil || d.client == nil {
		return
	}
	normalized := domain.NormalizeAddress(address)
	if normalized == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = d.client.Del(ctx, d.key(normalized)).Err()
}

func (d *redisAlertDeduper) key(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return d.prefix + hex.EncodeToString(sum[:8])
}
