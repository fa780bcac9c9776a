//go:build !integration

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-service/internal/domain/model"
	"github.com/guttosm/quote-service/internal/mocks"
	"github.com/guttosm/quote-service/internal/repository"
)

func storedTables(version int) *repository.PricingTablesDocument {
	tables := DefaultPricingTables()
	doc := repository.NewPricingTablesDocument(tables)
	doc.Version = version
	doc.Active = true
	return doc
}

func TestPricingTablesService_Active(t *testing.T) {
	ctx := context.Background()

	t.Run("no repository serves defaults", func(t *testing.T) {
		tables, err := NewPricingTablesService(nil).Active(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, tables.Version)
		assert.Len(t, tables.Tiers, len(model.AllTiers))
	})

	t.Run("nothing stored serves defaults", func(t *testing.T) {
		repo := new(mocks.MockPricingTablesRepositoryInterface)
		repo.On("GetActive", mock.Anything).Return(nil, nil)

		tables, err := NewPricingTablesService(repo).Active(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, tables.Version)
		assert.NoError(t, tables.Validate())
	})

	t.Run("stored version is memoized", func(t *testing.T) {
		repo := new(mocks.MockPricingTablesRepositoryInterface)
		repo.On("GetActive", mock.Anything).Return(storedTables(4), nil).Once()
		svc := NewPricingTablesService(repo, WithRefreshInterval(time.Hour))

		for i := 0; i < 3; i++ {
			tables, err := svc.Active(ctx)
			require.NoError(t, err)
			assert.Equal(t, 4, tables.Version)
		}
		repo.AssertNumberOfCalls(t, "GetActive", 1)
	})

	t.Run("zero refresh reads through", func(t *testing.T) {
		repo := new(mocks.MockPricingTablesRepositoryInterface)
		repo.On("GetActive", mock.Anything).Return(storedTables(2), nil)
		svc := NewPricingTablesService(repo, WithRefreshInterval(0))

		_, _ = svc.Active(ctx)
		_, _ = svc.Active(ctx)
		repo.AssertNumberOfCalls(t, "GetActive", 2)
	})

	t.Run("repository error", func(t *testing.T) {
		boom := errors.New("mongo down")
		repo := new(mocks.MockPricingTablesRepositoryInterface)
		repo.On("GetActive", mock.Anything).Return(nil, boom)

		_, err := NewPricingTablesService(repo).Active(ctx)
		assert.ErrorIs(t, err, boom)
	})
}

func TestPricingTablesService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("stores, memoizes and notifies", func(t *testing.T) {
		repo := new(mocks.MockPricingTablesRepositoryInterface)
		repo.On("Create", mock.Anything, mock.AnythingOfType("model.PricingTables"), "ops@example.com").
			Return(storedTables(5), nil).Once()

		var notified []int
		svc := NewPricingTablesService(repo, WithOnUpdate(func(tables model.PricingTables) {
			notified = append(notified, tables.Version)
		}))

		stored, err := svc.Update(ctx, DefaultPricingTables(), "ops@example.com")
		require.NoError(t, err)
		assert.Equal(t, 5, stored.Version)
		assert.Equal(t, []int{5}, notified)

		active, err := svc.Active(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, active.Version)
		repo.AssertNotCalled(t, "GetActive", mock.Anything)
	})

	t.Run("invalid tables are rejected", func(t *testing.T) {
		repo := new(mocks.MockPricingTablesRepositoryInterface)
		tables := DefaultPricingTables()
		delete(tables.Shipping, model.TierEconomy)

		_, err := NewPricingTablesService(repo).Update(ctx, tables, "ops")
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no repository", func(t *testing.T) {
		_, err := NewPricingTablesService(nil).Update(ctx, DefaultPricingTables(), "ops")
		assert.ErrorIs(t, err, ErrRepositoryNotConfigured)
	})
}

func TestPricingTablesService_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds defaults when empty", func(t *testing.T) {
		repo := new(mocks.MockPricingTablesRepositoryInterface)
		repo.On("GetActive", mock.Anything).Return(nil, nil).Once()
		repo.On("Create", mock.Anything, mock.Anything, "system").Return(storedTables(1), nil).Once()

		require.NoError(t, NewPricingTablesService(repo).Seed(ctx))
		repo.AssertExpectations(t)
	})

	t.Run("existing tables are kept", func(t *testing.T) {
		repo := new(mocks.MockPricingTablesRepositoryInterface)
		repo.On("GetActive", mock.Anything).Return(storedTables(3), nil).Once()

		require.NoError(t, NewPricingTablesService(repo).Seed(ctx))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPricingTablesService_History(t *testing.T) {
	repo := new(mocks.MockPricingTablesRepositoryInterface)
	repo.On("List", mock.Anything, 10).Return([]repository.PricingTablesDocument{*storedTables(2), *storedTables(1)}, nil)

	history, err := NewPricingTablesService(repo).History(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
