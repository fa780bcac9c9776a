// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/quote-service/internal/domain/model"
)

type MockLoggingService struct {
	mock.Mock
}

// NewMockLoggingService creates a MockLoggingService whose expectations are
// asserted when the test finishes.
func NewMockLoggingService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLoggingService {
	m := &MockLoggingService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLoggingService) CreateLog(ctx context.Context, entry *model.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLoggingService) CreateLogs(ctx context.Context, entries []*model.LogEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLoggingService) QueryLogs(ctx context.Context, filter model.LogFilter) (model.LogPage, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(model.LogPage), args.Error(1)
}

func (m *MockLoggingService) QuoteAuditTrail(ctx context.Context, quoteID string, limit int) ([]model.LogEntry, error) {
	args := m.Called(ctx, quoteID, limit)
	entries, _ := args.Get(0).([]model.LogEntry)
	return entries, args.Error(1)
}
