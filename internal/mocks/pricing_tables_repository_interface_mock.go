// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/repository"
)

type MockPricingTablesRepositoryInterface struct {
	mock.Mock
}

func (m *MockPricingTablesRepositoryInterface) GetActive(ctx context.Context) (*repository.PricingTablesDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PricingTablesDocument), args.Error(1)
}

func (m *MockPricingTablesRepositoryInterface) Create(ctx context.Context, tables model.PricingTables, createdBy string) (*repository.PricingTablesDocument, error) {
	args := m.Called(ctx, tables, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PricingTablesDocument), args.Error(1)
}

func (m *MockPricingTablesRepositoryInterface) List(ctx context.Context, limit int) ([]repository.PricingTablesDocument, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.PricingTablesDocument), args.Error(1)
}
