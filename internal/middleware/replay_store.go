package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayPrefix namespaces stored responses in Redis.
const ReplayPrefix = "quote_idem:"

// StoredResponse is a response kept for replay under an idempotency key.
type StoredResponse struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// ReplayStore keeps responses for idempotent retries.
type ReplayStore interface {
	// Get returns the stored response, or false when the key is unknown or expired.
	Get(ctx context.Context, key string) (*StoredResponse, bool, error)
	Set(ctx context.Context, key string, resp *StoredResponse, ttl time.Duration) error
	Backend() string
}

type memoryEntry struct {
	resp      *StoredResponse
	expiresAt time.Time
}

// MemoryReplayStore is a bounded in-process ReplayStore. Expired entries are
// removed when read or when room is needed.
type MemoryReplayStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemoryReplayStore keeps at most maxEntries responses; zero or less means 10000.
func NewMemoryReplayStore(maxEntries int) *MemoryReplayStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryReplayStore{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryReplayStore) Get(_ context.Context, key string) (*StoredResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.resp, true, nil
}

func (s *MemoryReplayStore) Set(_ context.Context, key string, resp *StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.makeRoom(now)
	}
	s.entries[key] = memoryEntry{resp: resp, expiresAt: now.Add(ttl)}
	return nil
}

// makeRoom drops expired entries, or the one closest to expiry if none are.
func (s *MemoryReplayStore) makeRoom(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	if len(s.entries) >= s.maxEntries && oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryReplayStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryReplayStore) Backend() string { return "memory" }

// RedisReplayStore shares replays across instances. Entries are JSON values
// written with SET EX.
type RedisReplayStore struct {
	client *redis.Client
}

func NewRedisReplayStore(client *redis.Client) *RedisReplayStore {
	return &RedisReplayStore{client: client}
}

func (s *RedisReplayStore) Get(ctx context.Context, key string) (*StoredResponse, bool, error) {
	raw, err := s.client.Get(ctx, ReplayPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read replay: %w", err)
	}

	var resp StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("decode replay: %w", err)
	}
	return &resp, true, nil
}

func (s *RedisReplayStore) Set(ctx context.Context, key string, resp *StoredResponse, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode replay: %w", err)
	}
	if err := s.client.Set(ctx, ReplayPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("write replay: %w", err)
	}
	return nil
}

func (s *RedisReplayStore) Backend() string { return "redis" }
