//go:build !integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/guttosm/quote-service/internal/circuitbreaker"
	"github.com/guttosm/quote-service/internal/domain/model"
)

var errStoreDown = errors.New("store down")

type fakeTablesRepo struct {
	err   error
	calls int
}

func (f *fakeTablesRepo) GetActive(context.Context) (*PricingTablesDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &PricingTablesDocument{Version: 2, Active: true}, nil
}

func (f *fakeTablesRepo) Create(_ context.Context, tables model.PricingTables, _ string) (*PricingTablesDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return NewPricingTablesDocument(tables), nil
}

func (f *fakeTablesRepo) List(context.Context, int) ([]PricingTablesDocument, error) {
	f.calls++
	return nil, f.err
}

type fakeQuotesRepo struct {
	quotes map[string]model.Quote
	err    error
}

func (f *fakeQuotesRepo) Create(_ context.Context, quote model.Quote, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.quotes[quote.ID] = quote
	return nil
}

func (f *fakeQuotesRepo) GetByID(_ context.Context, id string) (*model.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.quotes[id]
	if !ok {
		return nil, ErrQuoteNotFound
	}
	return &q, nil
}

func (f *fakeQuotesRepo) List(context.Context, int) ([]model.Quote, error) {
	return nil, f.err
}

func newTestBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          time.Hour,
		Name:             "test",
	})
}

func TestPricingTablesRepositoryWithCircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("passes results through", func(t *testing.T) {
		wrapped := NewPricingTablesRepositoryWithCircuitBreaker(&fakeTablesRepo{}, newTestBreaker())

		doc, err := wrapped.GetActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, 2, doc.Version)
	})

	t.Run("open circuit falls back to nil tables", func(t *testing.T) {
		fake := &fakeTablesRepo{err: errStoreDown}
		cb := newTestBreaker()
		wrapped := NewPricingTablesRepositoryWithCircuitBreaker(fake, cb)

		_, err := wrapped.GetActive(ctx)
		assert.ErrorIs(t, err, errStoreDown)
		assert.True(t, cb.IsOpen())

		doc, err := wrapped.GetActive(ctx)
		assert.NoError(t, err)
		assert.Nil(t, doc)
		assert.Equal(t, 1, fake.calls)
	})

	t.Run("writes surface open circuit", func(t *testing.T) {
		cb := newTestBreaker()
		wrapped := NewPricingTablesRepositoryWithCircuitBreaker(&fakeTablesRepo{err: errStoreDown}, cb)

		_, _ = wrapped.List(ctx, 10)
		_, err := wrapped.Create(ctx, model.PricingTables{}, "ops")
		assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
		assert.Same(t, cb, wrapped.GetCircuitBreaker())
	})
}

func TestQuotesRepositoryWithCircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("not found does not trip the breaker", func(t *testing.T) {
		cb := newTestBreaker()
		wrapped := NewQuotesRepositoryWithCircuitBreaker(&fakeQuotesRepo{quotes: map[string]model.Quote{}}, cb)

		for i := 0; i < 3; i++ {
			_, err := wrapped.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, ErrQuoteNotFound)
		}
		assert.False(t, cb.IsOpen())
	})

	t.Run("create then get", func(t *testing.T) {
		wrapped := NewQuotesRepositoryWithCircuitBreaker(&fakeQuotesRepo{quotes: map[string]model.Quote{}}, newTestBreaker())

		require.NoError(t, wrapped.Create(ctx, model.Quote{ID: "q-1", Quantity: 5}, "client"))
		q, err := wrapped.GetByID(ctx, "q-1")
		require.NoError(t, err)
		assert.Equal(t, 5, q.Quantity)
	})

	t.Run("store failures open the circuit", func(t *testing.T) {
		cb := newTestBreaker()
		wrapped := NewQuotesRepositoryWithCircuitBreaker(&fakeQuotesRepo{err: errStoreDown}, cb)

		assert.ErrorIs(t, wrapped.Create(ctx, model.Quote{ID: "q-2"}, ""), errStoreDown)
		_, err := wrapped.List(ctx, 5)
		assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	})
}

type failingLogsRepo struct{}

func (failingLogsRepo) Insert(context.Context, ...*model.LogEntry) error { return errStoreDown }
func (failingLogsRepo) Find(context.Context, model.LogFilter) ([]model.LogEntry, error) {
	return nil, errStoreDown
}
func (failingLogsRepo) Count(context.Context, model.LogFilter) (int64, error) {
	return 0, errStoreDown
}

func TestLogsRepositoryWithCircuitBreaker_DropsWritesWhenOpen(t *testing.T) {
	ctx := context.Background()
	wrapped := NewLogsRepositoryWithCircuitBreaker(failingLogsRepo{}, newTestBreaker())

	assert.ErrorIs(t, wrapped.Insert(ctx, &model.LogEntry{Message: "first"}), errStoreDown)
	assert.NoError(t, wrapped.Insert(ctx, &model.LogEntry{Message: "second"}))
	assert.NoError(t, wrapped.Insert(ctx, &model.LogEntry{Message: "third"}, &model.LogEntry{Message: "fourth"}))

	_, err := wrapped.Count(ctx, model.LogFilter{})
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	_, err = wrapped.Find(ctx, model.LogFilter{QuoteID: "q-1"})
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
}

func TestIsStoreFailure(t *testing.T) {
	duplicate := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "quote miss", err: ErrQuoteNotFound, want: false},
		{name: "wrapped document miss", err: fmt.Errorf("find active: %w", mongo.ErrNoDocuments), want: false},
		{name: "invalid input", err: model.NewValidationError("version", "must be positive"), want: false},
		{name: "duplicate key", err: duplicate, want: false},
		{name: "server selection", err: mongo.ErrClientDisconnected, want: true},
		{name: "timeout", err: context.DeadlineExceeded, want: true},
		{name: "other", err: errStoreDown, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStoreFailure(tt.err))
		})
	}
}

func TestLogFilterDocument(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	tests := []struct {
		name   string
		filter model.LogFilter
		want   bson.D
	}{
		{name: "empty matches everything", want: bson.D{}},
		{
			name:   "equality fields in fixed order",
			filter: model.LogFilter{Level: "error", QuoteID: "q-9", Action: "quote"},
			want: bson.D{
				{Key: "quote_id", Value: "q-9"},
				{Key: "action", Value: "quote"},
				{Key: "level", Value: "error"},
			},
		},
		{
			name:   "open ended range",
			filter: model.LogFilter{ClientID: "acme", Since: since},
			want: bson.D{
				{Key: "client_id", Value: "acme"},
				{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: since}}},
			},
		},
		{
			name:   "closed range",
			filter: model.LogFilter{RequestID: "req-1", Since: since, Until: until},
			want: bson.D{
				{Key: "request_id", Value: "req-1"},
				{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: since}, {Key: "$lte", Value: until}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logFilterDocument(tt.filter))
		})
	}
}
