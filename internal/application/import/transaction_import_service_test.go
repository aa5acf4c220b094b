package importapp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransactionRepository is a mock implementation of transaction.Repository
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

// MockDatasetLoader is a mock implementation of DatasetLoader
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

// MockCacheInvalidator is a mock implementation of CacheInvalidator
type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) InvalidateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type recordedImport struct {
	records int
	err     error
}

type fakeImportRecorder struct {
	imports []recordedImport
}

func (r *fakeImportRecorder) RecordImport(_ context.Context, records int, err error) {
	r.imports = append(r.imports, recordedImport{records: records, err: err})
}

func sampleTransactions(t *testing.T) []*transaction.Transaction {
	t.Helper()
	attrs := []transaction.Attributes{
		{ExternalID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing", Sold: 0},
		{ExternalID: 2, Title: "T-Shirt", Price: decimal.RequireFromString("22.3"), Category: "men's clothing", Sold: 1},
		{ExternalID: 3, Title: "Bracelet", Price: decimal.RequireFromString("695"), Category: "jewelery", Sold: 1},
	}
	txs := make([]*transaction.Transaction, len(attrs))
	for i, a := range attrs {
		a.DateOfSale = time.Date(2021, time.Month(i+1), 27, 20, 29, 54, 0, time.UTC)
		tx, err := transaction.NewTransaction(a)
		require.NoError(t, err)
		txs[i] = tx
	}
	return txs
}

func TestTransactionImportService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces store and invalidates cache", func(t *testing.T) {
		loader := new(MockDatasetLoader)
		repo := new(MockTransactionRepository)
		cache := new(MockCacheInvalidator)
		svc := NewTransactionImportService(loader, repo, WithCacheInvalidator(cache))

		txs := sampleTransactions(t)
		loader.On("Load", ctx).Return(txs, nil)
		repo.On("ReplaceAll", ctx, txs).Return(nil)
		cache.On("InvalidateAll", ctx).Return(nil)

		result, err := svc.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Imported)
		assert.Equal(t, 2, result.SoldItems)
		assert.Equal(t, 2, result.Categories)

		loader.AssertExpectations(t)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("load failure leaves store untouched", func(t *testing.T) {
		loader := new(MockDatasetLoader)
		repo := new(MockTransactionRepository)
		svc := NewTransactionImportService(loader, repo)

		loader.On("Load", ctx).Return(nil, transaction.ErrSeedUnavailable)

		_, err := svc.Import(ctx)
		assert.ErrorIs(t, err, transaction.ErrSeedUnavailable)
		repo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
	})

	t.Run("store failure is wrapped and cache kept", func(t *testing.T) {
		loader := new(MockDatasetLoader)
		repo := new(MockTransactionRepository)
		cache := new(MockCacheInvalidator)
		svc := NewTransactionImportService(loader, repo, WithCacheInvalidator(cache))

		dbErr := errors.New("disk full")
		loader.On("Load", ctx).Return(sampleTransactions(t), nil)
		repo.On("ReplaceAll", ctx, mock.Anything).Return(dbErr)

		_, err := svc.Import(ctx)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to store transactions")
		cache.AssertNotCalled(t, "InvalidateAll", mock.Anything)
	})

	t.Run("cache invalidation failure does not fail import", func(t *testing.T) {
		loader := new(MockDatasetLoader)
		repo := new(MockTransactionRepository)
		cache := new(MockCacheInvalidator)
		svc := NewTransactionImportService(loader, repo, WithCacheInvalidator(cache))

		loader.On("Load", ctx).Return([]*transaction.Transaction{}, nil)
		repo.On("ReplaceAll", ctx, mock.Anything).Return(nil)
		cache.On("InvalidateAll", ctx).Return(errors.New("redis down"))

		result, err := svc.Import(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.Imported)
	})

	t.Run("records outcomes", func(t *testing.T) {
		loader := new(MockDatasetLoader)
		repo := new(MockTransactionRepository)
		recorder := &fakeImportRecorder{}
		svc := NewTransactionImportService(loader, repo, WithImportRecorder(recorder))

		loader.On("Load", ctx).Return(sampleTransactions(t), nil).Once()
		loader.On("Load", ctx).Return(nil, transaction.ErrSeedFormat).Once()
		repo.On("ReplaceAll", ctx, mock.Anything).Return(nil)

		_, err := svc.Import(ctx)
		require.NoError(t, err)
		_, err = svc.Import(ctx)
		require.Error(t, err)

		require.Len(t, recorder.imports, 2)
		assert.Equal(t, 3, recorder.imports[0].records)
		assert.NoError(t, recorder.imports[0].err)
		assert.Zero(t, recorder.imports[1].records)
		assert.ErrorIs(t, recorder.imports[1].err, transaction.ErrSeedFormat)
	})

	t.Run("rejects concurrent import", func(t *testing.T) {
		loader := new(MockDatasetLoader)
		repo := new(MockTransactionRepository)
		svc := NewTransactionImportService(loader, repo)

		started := make(chan struct{})
		release := make(chan struct{})
		loader.On("Load", ctx).Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return([]*transaction.Transaction{}, nil).Once()
		repo.On("ReplaceAll", ctx, mock.Anything).Return(nil)

		var wg sync.WaitGroup
		wg.Add(1)
		var firstErr error
		go func() {
			defer wg.Done()
			_, firstErr = svc.Import(ctx)
		}()

		<-started
		_, err := svc.Import(ctx)
		assert.ErrorIs(t, err, transaction.ErrImportInProgress)

		close(release)
		wg.Wait()
		assert.NoError(t, firstErr)
	})
}

func TestTransactionImportService_ImportIfEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("skips populated store", func(t *testing.T) {
		loader := new(MockDatasetLoader)
		repo := new(MockTransactionRepository)
		svc := NewTransactionImportService(loader, repo)

		repo.On("Count", ctx, transaction.Filter{}).Return(int64(60), nil)

		result, imported, err := svc.ImportIfEmpty(ctx)
		require.NoError(t, err)
		assert.False(t, imported)
		assert.Nil(t, result)
		loader.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("imports into empty store", func(t *testing.T) {
		loader := new(MockDatasetLoader)
		repo := new(MockTransactionRepository)
		svc := NewTransactionImportService(loader, repo)

		txs := sampleTransactions(t)
		repo.On("Count", ctx, transaction.Filter{}).Return(int64(0), nil)
		loader.On("Load", ctx).Return(txs, nil)
		repo.On("ReplaceAll", ctx, txs).Return(nil)

		result, imported, err := svc.ImportIfEmpty(ctx)
		require.NoError(t, err)
		assert.True(t, imported)
		assert.Equal(t, 3, result.Imported)
	})

	t.Run("count failure is returned", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionImportService(new(MockDatasetLoader), repo)

		repo.On("Count", ctx, transaction.Filter{}).Return(int64(0), errors.New("no such table"))

		_, _, err := svc.ImportIfEmpty(ctx)
		assert.Error(t, err)
	})
}
