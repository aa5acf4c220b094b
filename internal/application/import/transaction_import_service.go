package importapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/salesdash/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DatasetLoader fetches and decodes the seed dataset
type DatasetLoader interface {
	Load(ctx context.Context) ([]*transaction.Transaction, error)
}

// CacheInvalidator drops cached reports after the dataset changes
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// ImportRecorder observes import attempts
type ImportRecorder interface {
	RecordImport(ctx context.Context, records int, err error)
}

// ImportResult describes a completed dataset import
type ImportResult struct {
	Imported   int           `json:"imported"`
	SoldItems  int           `json:"soldItems"`
	Categories int           `json:"categories"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"durationMs"`
}

// TransactionImportService replaces the stored transactions with the seed
// dataset. Only one import runs at a time.
type TransactionImportService struct {
	loader   DatasetLoader
	repo     transaction.Repository
	cache    CacheInvalidator
	recorder ImportRecorder
	logger   *zap.Logger
	mu       sync.Mutex
}

// ImportOption configures a TransactionImportService
type ImportOption func(*TransactionImportService)

// WithCacheInvalidator sets the cache flushed after a successful import
func WithCacheInvalidator(cache CacheInvalidator) ImportOption {
	return func(s *TransactionImportService) {
		s.cache = cache
	}
}

// WithImportRecorder sets the metrics recorder
func WithImportRecorder(recorder ImportRecorder) ImportOption {
	return func(s *TransactionImportService) {
		s.recorder = recorder
	}
}

// WithImportLogger sets the service logger
func WithImportLogger(logger *zap.Logger) ImportOption {
	return func(s *TransactionImportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewTransactionImportService creates a new TransactionImportService
func NewTransactionImportService(loader DatasetLoader, repo transaction.Repository, opts ...ImportOption) *TransactionImportService {
	s := &TransactionImportService{
		loader: loader,
		repo:   repo,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import fetches the dataset and atomically replaces every stored
// transaction with it. A concurrent call fails with ErrImportInProgress.
func (s *TransactionImportService) Import(ctx context.Context) (result *ImportResult, err error) {
	if !s.mu.TryLock() {
		return nil, transaction.ErrImportInProgress
	}
	defer s.mu.Unlock()

	if s.recorder != nil {
		defer func() {
			imported := 0
			if result != nil {
				imported = result.Imported
			}
			s.recorder.RecordImport(ctx, imported, err)
		}()
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "import", "dataset")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	start := time.Now()
	var txs []*transaction.Transaction
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("dataset_import"), func(ctx context.Context) {
		txs, err = s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(telemetry.SpanAttrRecords, len(txs)))

	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.logger.Warn("Failed to invalidate report cache after import", zap.Error(err))
		}
	}

	result = summarize(txs)
	result.Duration = time.Since(start)
	result.DurationMs = result.Duration.Milliseconds()

	s.logger.Info("Transaction dataset imported",
		zap.Int("imported", result.Imported),
		zap.Int("sold", result.SoldItems),
		zap.Int("categories", result.Categories),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// ImportIfEmpty imports the dataset only when the store holds no
// transactions. It reports whether an import ran.
func (s *TransactionImportService) ImportIfEmpty(ctx context.Context) (*ImportResult, bool, error) {
	count, err := s.repo.Count(ctx, transaction.Filter{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to count transactions: %w", err)
	}
	if count > 0 {
		s.logger.Debug("Skipping dataset import, store is not empty", zap.Int64("count", count))
		return nil, false, nil
	}
	result, err := s.Import(ctx)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

func (s *TransactionImportService) load(ctx context.Context) ([]*transaction.Transaction, error) {
	txs, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAll(ctx, txs); err != nil {
		return nil, fmt.Errorf("failed to store transactions: %w", err)
	}
	return txs, nil
}

func summarize(txs []*transaction.Transaction) *ImportResult {
	categories := make(map[string]struct{})
	result := &ImportResult{Imported: len(txs)}
	for _, t := range txs {
		if t.IsSold() {
			result.SoldItems++
		}
		categories[t.Category] = struct{}{}
	}
	result.Categories = len(categories)
	return result
}
