package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/logger"
	"github.com/guttosm/quote-service/internal/metrics"
	"github.com/guttosm/quote-service/internal/service"
)

// LogBatcherConfig tunes how request and audit entries are shipped to the logs collection.
type LogBatcherConfig struct {
	QueueSize     int
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
	WriteTimeout  time.Duration
}

// DefaultLogBatcherConfig returns the settings used by the service.
func DefaultLogBatcherConfig() LogBatcherConfig {
	return LogBatcherConfig{
		QueueSize:     1024,
		Workers:       2,
		BatchSize:     50,
		FlushInterval: 500 * time.Millisecond,
		WriteTimeout:  5 * time.Second,
	}
}

func (c LogBatcherConfig) normalized() LogBatcherConfig {
	d := DefaultLogBatcherConfig()
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = d.FlushInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	return c
}

// LogBatcherStats is a snapshot of the batcher counters.
type LogBatcherStats struct {
	Accepted int64
	Dropped  int64
	Shipped  int64
	Failed   int64
}

// LogBatcher queues log entries and writes them in bulk from a small worker pool.
// A full queue drops entries instead of blocking the request path.
type LogBatcher struct {
	sink  service.LoggingService
	cfg   LogBatcherConfig
	queue chan *model.LogEntry
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once

	accepted atomic.Int64
	dropped  atomic.Int64
	shipped  atomic.Int64
	failed   atomic.Int64
}

// NewLogBatcher starts a batcher writing to sink. It returns nil for a nil sink.
func NewLogBatcher(sink service.LoggingService, cfg LogBatcherConfig) *LogBatcher {
	if sink == nil {
		return nil
	}
	cfg = cfg.normalized()

	b := &LogBatcher{
		sink:  sink,
		cfg:   cfg,
		queue: make(chan *model.LogEntry, cfg.QueueSize),
		done:  make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		b.wg.Add(1)
		go b.run()
	}
	return b
}

func (b *LogBatcher) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	batch := b.newBatch()
	for {
		select {
		case entry := <-b.queue:
			batch = append(batch, entry)
			if len(batch) >= b.cfg.BatchSize {
				batch = b.flush(batch)
			}
		case <-ticker.C:
			batch = b.flush(batch)
		case <-b.done:
			for {
				select {
				case entry := <-b.queue:
					batch = append(batch, entry)
					if len(batch) >= b.cfg.BatchSize {
						batch = b.flush(batch)
					}
				default:
					b.flush(batch)
					return
				}
			}
		}
	}
}

func (b *LogBatcher) newBatch() []*model.LogEntry {
	return make([]*model.LogEntry, 0, b.cfg.BatchSize)
}

// flush writes batch and returns an empty one. The written slice is not reused.
func (b *LogBatcher) flush(batch []*model.LogEntry) []*model.LogEntry {
	if len(batch) == 0 {
		return batch
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.WriteTimeout)
	defer cancel()

	n := len(batch)
	if err := b.sink.CreateLogs(ctx, batch); err != nil {
		b.failed.Add(int64(n))
		metrics.RecordLogEntries("failed", n)
		log := logger.Logger()
		log.Warn().Err(err).
			Int("entries", n).
			Str("first_request_id", batch[0].RequestID).
			Msg("Failed to ship log batch")
	} else {
		b.shipped.Add(int64(n))
		metrics.RecordLogEntries("shipped", n)
	}
	return b.newBatch()
}

// Enqueue queues entry for the next batch. It reports false when the entry
// was dropped because the queue is full or the batcher is stopped.
func (b *LogBatcher) Enqueue(entry *model.LogEntry) bool {
	select {
	case <-b.done:
		b.drop()
		return false
	default:
	}

	select {
	case b.queue <- entry:
		b.accepted.Add(1)
		metrics.RecordLogEntries("accepted", 1)
		return true
	default:
		b.drop()
		return false
	}
}

func (b *LogBatcher) drop() {
	b.dropped.Add(1)
	metrics.RecordLogEntries("dropped", 1)
}

// Stop flushes queued entries and waits for the workers. Safe to call twice.
func (b *LogBatcher) Stop() {
	b.once.Do(func() {
		close(b.done)
		b.wg.Wait()
	})
}

// Stats returns the current counters.
func (b *LogBatcher) Stats() LogBatcherStats {
	return LogBatcherStats{
		Accepted: b.accepted.Load(),
		Dropped:  b.dropped.Load(),
		Shipped:  b.shipped.Load(),
		Failed:   b.failed.Load(),
	}
}

var (
	activeBatcher   *LogBatcher
	activeBatcherMu sync.RWMutex
)

// StartLogBatcher installs the process-wide batcher, stopping the previous one.
func StartLogBatcher(sink service.LoggingService, cfg LogBatcherConfig) {
	activeBatcherMu.Lock()
	defer activeBatcherMu.Unlock()

	if activeBatcher != nil {
		activeBatcher.Stop()
	}
	activeBatcher = NewLogBatcher(sink, cfg)
}

// ActiveLogBatcher returns the process-wide batcher, or nil.
func ActiveLogBatcher() *LogBatcher {
	activeBatcherMu.RLock()
	defer activeBatcherMu.RUnlock()
	return activeBatcher
}

// StopLogBatcher flushes and removes the process-wide batcher.
func StopLogBatcher() {
	activeBatcherMu.Lock()
	defer activeBatcherMu.Unlock()

	if activeBatcher != nil {
		activeBatcher.Stop()
		activeBatcher = nil
	}
}

// shipLog hands entry to the active batcher, or writes it directly in the
// background when none is running.
func shipLog(sink service.LoggingService, entry *model.LogEntry) {
	if b := ActiveLogBatcher(); b != nil {
		b.Enqueue(entry)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sink.CreateLog(ctx, entry); err != nil {
			log := logger.Logger()
			log.Warn().Err(err).Str("request_id", entry.RequestID).Msg("Failed to write log entry")
		}
	}()
}
