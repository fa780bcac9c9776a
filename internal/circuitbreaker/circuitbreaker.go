// Package circuitbreaker guards calls to the document store so a failing
// database degrades the quote service instead of stalling it.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the breaker rejects calls, including
// calls beyond the probe budget of a half-open breaker.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of a breaker. The numeric values are exported as a Prometheus gauge.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// Config holds circuit breaker configuration.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int
	// SuccessThreshold is the number of half-open successes that closes it
	// again. It is also the number of probes admitted while half-open.
	SuccessThreshold int
	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration
	// Name labels logs and metrics.
	Name string
	// IsSuccessful accepts a non-nil error as a healthy answer, such as a
	// lookup miss. Accepted errors count as successes.
	IsSuccessful func(err error) bool
	// OnStateChange, when set, is called after every transition. It must not
	// call back into the breaker.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns a default circuit breaker configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Name:             "circuit-breaker",
	}
}

// CircuitBreaker wraps a gobreaker breaker shared by calls of any result type.
type CircuitBreaker struct {
	config Config
	cb     *gobreaker.CircuitBreaker[any]

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	openedAt    time.Time
}

// New creates a closed circuit breaker.
func New(config Config) *CircuitBreaker {
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 1
	}

	b := &CircuitBreaker{config: config}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: uint32(config.SuccessThreshold),
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.FailureThreshold)
		},
		IsSuccessful: b.classify,
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.transition(fromGobreaker(from), fromGobreaker(to))
		},
	})
	if config.OnStateChange != nil {
		config.OnStateChange(config.Name, StateClosed, StateClosed)
	}
	return b
}

// Do runs fn through cb and returns its value.
func Do[T any](ctx context.Context, cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var out T
	err := cb.Execute(ctx, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

// Execute runs fn unless the circuit is open. A context that is already done
// is returned as is and does not count; neither does an fn error caused by
// cancellation.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := cb.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return err
}

// classify reports whether an outcome is healthy and tracks the failure streak.
func (cb *CircuitBreaker) classify(err error) bool {
	ok := err == nil ||
		errors.Is(err, context.Canceled) ||
		(cb.config.IsSuccessful != nil && cb.config.IsSuccessful(err))

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if ok {
		cb.failures = 0
	} else {
		cb.failures++
		cb.lastFailure = time.Now()
	}
	return ok
}

// transition runs under the gobreaker lock.
func (cb *CircuitBreaker) transition(from, to State) {
	cb.mu.Lock()
	if to == StateOpen {
		cb.openedAt = time.Now()
	}
	failures := cb.failures
	cb.mu.Unlock()

	switch {
	case to == StateOpen && from == StateHalfOpen:
		log.Warn().Str("circuit_breaker", cb.config.Name).Msg("Circuit breaker reopened after failed probe")
	case to == StateOpen:
		log.Warn().Str("circuit_breaker", cb.config.Name).Int("failure_count", failures).Msg("Circuit breaker opened")
	case to == StateHalfOpen:
		log.Info().Str("circuit_breaker", cb.config.Name).Msg("Circuit breaker half-open, probing")
	default:
		log.Info().Str("circuit_breaker", cb.config.Name).Msg("Circuit breaker closed")
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}

func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// State reports the current state, moving an expired open circuit to half-open.
func (cb *CircuitBreaker) State() State {
	return fromGobreaker(cb.cb.State())
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// Stats is a snapshot of a breaker for health reporting.
type Stats struct {
	Name         string    `json:"name"`
	State        string    `json:"state"`
	FailureCount int       `json:"failure_count"`
	SuccessCount int       `json:"success_count"`
	LastFailure  time.Time `json:"last_failure,omitempty"`
	// RetryAt is when an open circuit starts probing again.
	RetryAt   time.Time `json:"retry_at,omitempty"`
	IsHealthy bool      `json:"healthy"`
}

// GetStats returns current circuit breaker statistics.
func (cb *CircuitBreaker) GetStats() Stats {
	state := cb.State()
	counts := cb.cb.Counts()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	s := Stats{
		Name:         cb.config.Name,
		State:        state.String(),
		FailureCount: cb.failures,
		SuccessCount: int(counts.ConsecutiveSuccesses),
		LastFailure:  cb.lastFailure,
		IsHealthy:    state == StateClosed,
	}
	if state == StateOpen {
		s.RetryAt = cb.openedAt.Add(cb.config.Timeout)
	}
	return s
}
