package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/metrics"
)

const (
	defaultShards  = 16
	reportInterval = 15 * time.Second
)

// Local is an in-process LRU split into independently locked shards.
// Entries expire ttl after their last write.
type Local struct {
	shards []*shard
	mask   uint64

	done     chan struct{}
	stopOnce sync.Once
}

type shard struct {
	lru      *expirable.LRU[string, entry]
	ttl      time.Duration
	capacity int
	purging  atomic.Bool

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type entry struct {
	quote   model.Quote
	expires time.Time
}

// NewLocal creates a cache holding about capacity quotes. shards is rounded
// up to a power of two and defaults to 16.
func NewLocal(capacity int, ttl time.Duration, shards int) *Local {
	if shards <= 0 {
		shards = defaultShards
	}
	n := 1
	for n < shards {
		n <<= 1
	}
	perShard := max(capacity/n, 1)

	c := &Local{
		shards: make([]*shard, n),
		mask:   uint64(n - 1),
		done:   make(chan struct{}),
	}
	for i := range c.shards {
		s := &shard{ttl: ttl, capacity: perShard}
		s.lru = expirable.NewLRU[string, entry](perShard, s.onEvict, ttl)
		c.shards[i] = s
	}
	go c.report(reportInterval)
	return c
}

func (c *Local) shardFor(key string) *shard {
	return c.shards[xxhash.Sum64String(key)&c.mask]
}

func (c *Local) Get(_ context.Context, key string) (model.Quote, bool) {
	s := c.shardFor(key)
	e, ok := s.lru.Get(key)
	if !ok {
		s.misses.Add(1)
		metrics.RecordCacheOperation("get", "miss")
		return model.Quote{}, false
	}
	s.hits.Add(1)
	metrics.RecordCacheOperation("get", "hit")
	return e.quote, true
}

func (c *Local) Set(_ context.Context, key string, quote model.Quote) {
	s := c.shardFor(key)
	s.lru.Add(key, entry{quote: quote, expires: time.Now().Add(s.ttl)})
	metrics.RecordCacheOperation("set", "success")
}

// onEvict runs under the shard's LRU lock for every entry leaving the cache.
func (s *shard) onEvict(_ string, e entry) {
	switch {
	case s.purging.Load():
	case !time.Now().Before(e.expires):
		metrics.RecordCacheOperation("evict", "expired")
	default:
		s.evictions.Add(1)
		metrics.RecordCacheOperation("evict", "capacity")
	}
}

// Clear empties every shard and resets the counters.
func (c *Local) Clear() {
	for _, s := range c.shards {
		s.purging.Store(true)
		s.lru.Purge()
		s.purging.Store(false)
		s.hits.Store(0)
		s.misses.Store(0)
		s.evictions.Store(0)
	}
	metrics.RecordCacheOperation("clear", "success")
	c.publish()
}

// Stop ends gauge reporting. It is safe to call more than once.
func (c *Local) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Metrics sums the counters of all shards.
func (c *Local) Metrics() Metrics {
	var m Metrics
	for _, s := range c.shards {
		m.Size += s.lru.Len()
		m.Capacity += s.capacity
		m.Hits += s.hits.Load()
		m.Misses += s.misses.Load()
		m.Evictions += s.evictions.Load()
	}
	return m
}

func (c *Local) report(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.publish()
		case <-c.done:
			return
		}
	}
}

func (c *Local) publish() {
	m := c.Metrics()
	metrics.UpdateCacheMetrics(m.Size, m.Capacity)
}

var (
	_ Cache    = (*Local)(nil)
	_ Reporter = (*Local)(nil)
)
