package handler

import (
	"context"

	"github.com/salesdash/backend/internal/domain/report"
	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository implements transaction.Repository and
// report.SalesReportRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter transaction.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ReplaceAll(ctx context.Context, transactions []*transaction.Transaction) error {
	args := m.Called(ctx, transactions)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetStatistics(ctx context.Context, filter transaction.Filter) (*report.Statistics, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Statistics), args.Error(1)
}

func (m *MockTransactionRepository) CountByPriceRange(ctx context.Context, filter transaction.Filter, ranges []transaction.PriceRange) ([]report.PriceRangeCount, error) {
	args := m.Called(ctx, filter, ranges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PriceRangeCount), args.Error(1)
}

func (m *MockTransactionRepository) CountByCategory(ctx context.Context, filter transaction.Filter) ([]report.CategoryCount, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.CategoryCount), args.Error(1)
}

// MockDatasetLoader implements importapp.DatasetLoader for testing
type MockDatasetLoader struct {
	mock.Mock
}

func (m *MockDatasetLoader) Load(ctx context.Context) ([]*transaction.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}
