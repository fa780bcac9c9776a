package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/guttosm/quote-service/internal/circuitbreaker"
	"github.com/guttosm/quote-service/internal/domain/model"
)

// IsStoreFailure reports whether err says something about the health of the
// store. Lookup misses, duplicate keys and invalid input are answers from a
// healthy server and should not trip a breaker.
func IsStoreFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrQuoteNotFound),
		errors.Is(err, mongo.ErrNoDocuments),
		errors.Is(err, model.ErrInvalidInput),
		mongo.IsDuplicateKeyError(err):
		return false
	}
	return true
}

// guarded holds the breaker shared by the wrappers below.
type guarded struct {
	cb *circuitbreaker.CircuitBreaker
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (g guarded) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return g.cb
}

// PricingTablesRepositoryWithCircuitBreaker guards the pricing tables collection.
type PricingTablesRepositoryWithCircuitBreaker struct {
	guarded
	repo PricingTablesRepositoryInterface
}

func NewPricingTablesRepositoryWithCircuitBreaker(repo PricingTablesRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *PricingTablesRepositoryWithCircuitBreaker {
	return &PricingTablesRepositoryWithCircuitBreaker{guarded: guarded{cb: cb}, repo: repo}
}

// GetActive returns the active tables. While the circuit is open it returns
// nil so callers fall back to the built-in tables.
func (r *PricingTablesRepositoryWithCircuitBreaker) GetActive(ctx context.Context) (*PricingTablesDocument, error) {
	doc, err := circuitbreaker.Do(ctx, r.cb, func() (*PricingTablesDocument, error) {
		return r.repo.GetActive(ctx)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil, nil
	}
	return doc, err
}

func (r *PricingTablesRepositoryWithCircuitBreaker) Create(ctx context.Context, tables model.PricingTables, createdBy string) (*PricingTablesDocument, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (*PricingTablesDocument, error) {
		return r.repo.Create(ctx, tables, createdBy)
	})
}

func (r *PricingTablesRepositoryWithCircuitBreaker) List(ctx context.Context, limit int) ([]PricingTablesDocument, error) {
	return circuitbreaker.Do(ctx, r.cb, func() ([]PricingTablesDocument, error) {
		return r.repo.List(ctx, limit)
	})
}

// QuotesRepositoryWithCircuitBreaker guards the quotes collection.
type QuotesRepositoryWithCircuitBreaker struct {
	guarded
	repo QuotesRepositoryInterface
}

func NewQuotesRepositoryWithCircuitBreaker(repo QuotesRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *QuotesRepositoryWithCircuitBreaker {
	return &QuotesRepositoryWithCircuitBreaker{guarded: guarded{cb: cb}, repo: repo}
}

func (r *QuotesRepositoryWithCircuitBreaker) Create(ctx context.Context, quote model.Quote, clientID string) error {
	return r.cb.Execute(ctx, func() error {
		return r.repo.Create(ctx, quote, clientID)
	})
}

// GetByID loads a quote. A miss is reported to the breaker as a success
// whatever its IsSuccessful policy.
func (r *QuotesRepositoryWithCircuitBreaker) GetByID(ctx context.Context, id string) (*model.Quote, error) {
	var missing bool
	quote, err := circuitbreaker.Do(ctx, r.cb, func() (*model.Quote, error) {
		q, err := r.repo.GetByID(ctx, id)
		if errors.Is(err, ErrQuoteNotFound) {
			missing = true
			return nil, nil
		}
		return q, err
	})
	if missing {
		return nil, ErrQuoteNotFound
	}
	return quote, err
}

func (r *QuotesRepositoryWithCircuitBreaker) List(ctx context.Context, limit int) ([]model.Quote, error) {
	return circuitbreaker.Do(ctx, r.cb, func() ([]model.Quote, error) {
		return r.repo.List(ctx, limit)
	})
}

// LogsRepositoryWithCircuitBreaker guards the logs collection. Writes are
// dropped while the circuit is open so request handling never waits on it.
type LogsRepositoryWithCircuitBreaker struct {
	guarded
	repo LogsRepositoryInterface
}

func NewLogsRepositoryWithCircuitBreaker(repo LogsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *LogsRepositoryWithCircuitBreaker {
	return &LogsRepositoryWithCircuitBreaker{guarded: guarded{cb: cb}, repo: repo}
}

// Insert returns nil without writing when the circuit is open.
func (r *LogsRepositoryWithCircuitBreaker) Insert(ctx context.Context, entries ...*model.LogEntry) error {
	err := r.cb.Execute(ctx, func() error {
		return r.repo.Insert(ctx, entries...)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

func (r *LogsRepositoryWithCircuitBreaker) Find(ctx context.Context, f model.LogFilter) ([]model.LogEntry, error) {
	return circuitbreaker.Do(ctx, r.cb, func() ([]model.LogEntry, error) {
		return r.repo.Find(ctx, f)
	})
}

func (r *LogsRepositoryWithCircuitBreaker) Count(ctx context.Context, f model.LogFilter) (int64, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (int64, error) {
		return r.repo.Count(ctx, f)
	})
}
