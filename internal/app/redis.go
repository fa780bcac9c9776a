package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-service/config"
)

// InitializeRedis connects to the shared Redis used for rate limits and
// idempotent replays. It returns nil when no URL is configured or the server
// cannot be reached, and callers fall back to process memory.
func InitializeRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.URL == "" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Error().Err(err).Msg("Invalid REDIS_URL, limiting per instance")
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Str("addr", opts.Addr).Msg("Redis unreachable, limiting per instance")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Connected to Redis")
	return client
}
