package repository

import (
	"context"

	"github.com/guttosm/quote-service/internal/domain/model"
)

// PricingTablesRepositoryInterface defines the interface for pricing tables repository operations.
type PricingTablesRepositoryInterface interface {
	GetActive(ctx context.Context) (*PricingTablesDocument, error)
	Create(ctx context.Context, tables model.PricingTables, createdBy string) (*PricingTablesDocument, error)
	List(ctx context.Context, limit int) ([]PricingTablesDocument, error)
}

// QuotesRepositoryInterface defines the interface for quote persistence.
type QuotesRepositoryInterface interface {
	Create(ctx context.Context, quote model.Quote, clientID string) error
	GetByID(ctx context.Context, id string) (*model.Quote, error)
	List(ctx context.Context, limit int) ([]model.Quote, error)
}

// LogsRepositoryInterface stores and reads request and audit entries.
type LogsRepositoryInterface interface {
	Insert(ctx context.Context, entries ...*model.LogEntry) error
	Find(ctx context.Context, f model.LogFilter) ([]model.LogEntry, error)
	Count(ctx context.Context, f model.LogFilter) (int64, error)
}
