package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/logger"
	"github.com/guttosm/quote-service/internal/metrics"
)

// KeyPrefix namespaces quote entries in a shared Redis.
const KeyPrefix = "quote-service:quote:"

// Redis shares quotes between replicas. Redis failures are logged and
// reported as misses; pricing never fails because the cache is down.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (model.Quote, bool) {
	if r == nil || r.client == nil || key == "" {
		return model.Quote{}, false
	}

	data, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheOperation("remote_get", "miss")
		return model.Quote{}, false
	case err != nil:
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Shared quote cache read failed")
		metrics.RecordCacheOperation("remote_get", "error")
		return model.Quote{}, false
	}

	var quote model.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Dropping undecodable shared quote")
		_ = r.client.Del(ctx, KeyPrefix+key).Err()
		metrics.RecordCacheOperation("remote_get", "corrupt")
		return model.Quote{}, false
	}
	metrics.RecordCacheOperation("remote_get", "hit")
	return quote, true
}

func (r *Redis) Set(ctx context.Context, key string, quote model.Quote) {
	if r == nil || r.client == nil || key == "" {
		return
	}

	data, err := json.Marshal(quote)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("quote_id", quote.ID).Msg("Failed to encode quote for shared cache")
		return
	}
	if err := r.client.Set(ctx, KeyPrefix+key, data, r.ttl).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Shared quote cache write failed")
		metrics.RecordCacheOperation("remote_set", "error")
		return
	}
	metrics.RecordCacheOperation("remote_set", "success")
}

// Clear is a no-op. Fingerprints include the pricing tables version, so a
// table change never hits old entries and they age out with the TTL.
func (r *Redis) Clear() {}

// Stop is a no-op; the client belongs to the application.
func (r *Redis) Stop() {}

var _ Cache = (*Redis)(nil)
