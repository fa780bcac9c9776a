// Package cache memoizes computed quotes by request fingerprint. Quotes live
// in a sharded in-process LRU, optionally backed by a shared Redis tier so
// replicas reuse each other's work.
package cache

import (
	"context"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// Cache stores computed quotes keyed by request fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (model.Quote, bool)
	Set(ctx context.Context, key string, quote model.Quote)
	// Clear drops everything this process can drop.
	Clear()
	// Stop releases background work. The cache must not be used afterwards.
	Stop()
}

// Metrics is a snapshot of cache counters.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// Reporter is implemented by caches that keep counters.
type Reporter interface {
	Metrics() Metrics
}
