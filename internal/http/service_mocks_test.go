package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/repository"
	"github.com/guttosm/quote-service/internal/service"
)

type MockQuoteService struct {
	mock.Mock
}

func newMockQuoteService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockQuoteService {
	m := &MockQuoteService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockQuoteService) Quote(ctx context.Context, req service.QuoteRequest) (model.Quote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Quote), args.Error(1)
}

func (m *MockQuoteService) Get(ctx context.Context, id string) (model.Quote, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Quote), args.Error(1)
}

func (m *MockQuoteService) Cost(ctx context.Context, spec model.PartSpecification) (service.CostEstimate, error) {
	args := m.Called(ctx, spec)
	return args.Get(0).(service.CostEstimate), args.Error(1)
}

func (m *MockQuoteService) ApplyLimits(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) model.LimitResult {
	args := m.Called(breakdown, req, limits)
	return args.Get(0).(model.LimitResult)
}

func (m *MockQuoteService) ValidateLimits(breakdown model.PriceBreakdown, req model.PricingRequest, limits *model.PricingLimits) error {
	args := m.Called(breakdown, req, limits)
	return args.Error(0)
}

func (m *MockQuoteService) InvalidateCache() {
	m.Called()
}

type MockPricingTablesService struct {
	mock.Mock
}

func newMockPricingTablesService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPricingTablesService {
	m := &MockPricingTablesService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPricingTablesService) Active(ctx context.Context) (model.PricingTables, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.PricingTables), args.Error(1)
}

func (m *MockPricingTablesService) Update(ctx context.Context, tables model.PricingTables, updatedBy string) (model.PricingTables, error) {
	args := m.Called(ctx, tables, updatedBy)
	return args.Get(0).(model.PricingTables), args.Error(1)
}

func (m *MockPricingTablesService) History(ctx context.Context, limit int) ([]repository.PricingTablesDocument, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.PricingTablesDocument), args.Error(1)
}

func (m *MockPricingTablesService) Seed(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	_ service.QuoteService         = (*MockQuoteService)(nil)
	_ service.PricingTablesService = (*MockPricingTablesService)(nil)
)
