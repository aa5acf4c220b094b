package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// defaultMaxPayloadBytes bounds the dataset download
const defaultMaxPayloadBytes = 32 << 20

// Loader fetches and decodes the dataset from a Source
type Loader struct {
	source   Source
	maxBytes int64
	logger   *zap.Logger
}

// NewLoader creates a loader over the given source
func NewLoader(source Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		source:   source,
		maxBytes: defaultMaxPayloadBytes,
		logger:   logger,
	}
}

// NewLoaderFromConfig picks the HTTP or S3 source named by the configuration
func NewLoaderFromConfig(ctx context.Context, cfg config.SeedConfig, logger *zap.Logger) (*Loader, error) {
	switch cfg.Source {
	case config.SeedSourceS3:
		src, err := NewS3Source(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewLoader(src, logger), nil
	case config.SeedSourceHTTP, "":
		return NewLoader(NewHTTPSource(cfg.URL, cfg.Timeout), logger), nil
	default:
		return nil, fmt.Errorf("unknown seed source %q", cfg.Source)
	}
}

// Load returns every transaction in the dataset. Fetch failures wrap
// transaction.ErrSeedUnavailable and decode failures wrap
// transaction.ErrSeedFormat.
func (l *Loader) Load(ctx context.Context) ([]*transaction.Transaction, error) {
	start := time.Now()

	body, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transaction.ErrSeedUnavailable, err)
	}
	defer body.Close()

	limited := &io.LimitedReader{R: body, N: l.maxBytes + 1}
	txs, err := Decode(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transaction.ErrSeedFormat, err)
	}
	if limited.N <= 0 {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", transaction.ErrSeedFormat, l.maxBytes)
	}

	l.logger.Info("Loaded transaction dataset",
		zap.String("source", l.source.Describe()),
		zap.Int("records", len(txs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return txs, nil
}
