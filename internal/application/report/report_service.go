package report

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/salesdash/backend/internal/domain/report"
	"github.com/salesdash/backend/internal/domain/shared"
	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/salesdash/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report kinds used for cache keys and metrics
const (
	KindTransactions = "transactions"
	KindStatistics   = "statistics"
	KindBarChart     = "bar_chart"
	KindPieChart     = "pie_chart"
	KindCombined     = "combined"
)

// Cache stores computed reports. Failures are logged and never fail a request.
// Generation changes whenever the cache is invalidated.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Generation(ctx context.Context) (uint64, error)
}

// Recorder observes report computations
type Recorder interface {
	RecordReport(ctx context.Context, kind string, elapsed time.Duration, err error)
}

// ReportService answers the dashboard queries: transaction listing,
// statistics, price histogram, category breakdown and the combined view
type ReportService struct {
	txRepo     transaction.Repository
	reportRepo report.SalesReportRepository
	cache      Cache
	recorder   Recorder
	ranges     []transaction.PriceRange
	logger     *zap.Logger
}

// ServiceOption configures a ReportService
type ServiceOption func(*ReportService)

// WithCache enables report caching. A nil cache disables it.
func WithCache(cache Cache) ServiceOption {
	return func(s *ReportService) {
		s.cache = cache
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(recorder Recorder) ServiceOption {
	return func(s *ReportService) {
		s.recorder = recorder
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *ReportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPriceRanges overrides the histogram buckets
func WithPriceRanges(ranges []transaction.PriceRange) ServiceOption {
	return func(s *ReportService) {
		if len(ranges) > 0 {
			s.ranges = ranges
		}
	}
}

// NewReportService creates a new ReportService
func NewReportService(
	txRepo transaction.Repository,
	reportRepo report.SalesReportRepository,
	opts ...ServiceOption,
) *ReportService {
	s := &ReportService{
		txRepo:     txRepo,
		reportRepo: reportRepo,
		ranges:     transaction.DefaultPriceRanges,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTransactions returns one page of transactions for the period, filtered
// by the search term, along with the total number of matches
func (s *ReportService) ListTransactions(ctx context.Context, query ListTransactionsQuery) (result *TransactionListResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", KindTransactions, query.PeriodQuery.spanOptions()...)
	defer s.observe(ctx, span, KindTransactions, time.Now(), &err)

	filter, err := query.toFilter()
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrSearch, filter.Search, telemetry.SpanAttrPage, filter.Page)

	total, err := s.txRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	txs, err := s.txRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]TransactionResponse, len(txs))
	for i := range txs {
		items[i] = toTransactionResponse(&txs[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &TransactionListResponse{
		Transactions: page.Items,
		TotalCount:   page.Total,
		Page:         page.Page,
		PerPage:      page.PageSize,
		TotalPages:   page.TotalPages,
	}, nil
}

// GetStatistics returns the sale amount and sold/unsold counts for the period
func (s *ReportService) GetStatistics(ctx context.Context, query PeriodQuery) (result *StatisticsResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", KindStatistics, query.spanOptions()...)
	defer s.observe(ctx, span, KindStatistics, time.Now(), &err)

	filter, err := query.toFilter()
	if err != nil {
		return nil, err
	}
	return loadCached(ctx, s, cacheKey(KindStatistics, filter), func(ctx context.Context) (*StatisticsResponse, error) {
		stats, err := s.reportRepo.GetStatistics(ctx, filter)
		if err != nil {
			return nil, err
		}
		return toStatisticsResponse(stats), nil
	})
}

// GetPriceRangeChart returns the price histogram for the period.
// Every bucket is present, in bucket order.
func (s *ReportService) GetPriceRangeChart(ctx context.Context, query PeriodQuery) (result []PriceRangeResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", KindBarChart, query.spanOptions()...)
	defer s.observe(ctx, span, KindBarChart, time.Now(), &err)

	filter, err := query.toFilter()
	if err != nil {
		return nil, err
	}
	return loadCached(ctx, s, cacheKey(KindBarChart, filter), func(ctx context.Context) ([]PriceRangeResponse, error) {
		counts, err := s.reportRepo.CountByPriceRange(ctx, filter, s.ranges)
		if err != nil {
			return nil, err
		}
		return toPriceRangeResponses(counts), nil
	})
}

// GetCategoryChart returns record counts per category for the period
func (s *ReportService) GetCategoryChart(ctx context.Context, query PeriodQuery) (result []CategoryResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", KindPieChart, query.spanOptions()...)
	defer s.observe(ctx, span, KindPieChart, time.Now(), &err)

	filter, err := query.toFilter()
	if err != nil {
		return nil, err
	}
	return loadCached(ctx, s, cacheKey(KindPieChart, filter), func(ctx context.Context) ([]CategoryResponse, error) {
		counts, err := s.reportRepo.CountByCategory(ctx, filter)
		if err != nil {
			return nil, err
		}
		return toCategoryResponses(counts), nil
	})
}

// GetCombined computes the listing (first page, default size, no search),
// statistics, histogram and category breakdown concurrently. Any failure
// fails the whole result.
func (s *ReportService) GetCombined(ctx context.Context, query PeriodQuery) (result *CombinedReportResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", KindCombined, query.spanOptions()...)
	defer s.observe(ctx, span, KindCombined, time.Now(), &err)

	// validate once so an invalid month is reported before any query runs
	if _, err := query.toFilter(); err != nil {
		return nil, err
	}

	var (
		listing  *TransactionListResponse
		stats    *StatisticsResponse
		barChart []PriceRangeResponse
		pieChart []CategoryResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listing, err = s.ListTransactions(gctx, ListTransactionsQuery{PeriodQuery: query})
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.GetStatistics(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		barChart, err = s.GetPriceRangeChart(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		pieChart, err = s.GetCategoryChart(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CombinedReportResponse{
		Transactions: listing,
		Statistics:   stats,
		BarChart:     barChart,
		PieChart:     pieChart,
	}, nil
}

func (q PeriodQuery) spanOptions() []telemetry.SpanOption {
	return []telemetry.SpanOption{
		telemetry.WithAttribute(telemetry.SpanAttrMonth, q.Month),
		telemetry.WithAttribute(telemetry.SpanAttrYear, q.Year),
	}
}

func (q PeriodQuery) toFilter() (transaction.Filter, error) {
	period, err := transaction.NewMonthFilter(q.Month, q.Year)
	if err != nil {
		return transaction.Filter{}, err
	}
	return transaction.Filter{Period: period}.Normalize(), nil
}

func (q ListTransactionsQuery) toFilter() (transaction.Filter, error) {
	filter, err := q.PeriodQuery.toFilter()
	if err != nil {
		return filter, err
	}
	filter.Search = q.Search
	filter.Page = q.Page
	filter.PageSize = q.PerPage
	return filter.Normalize(), nil
}

func cacheKey(kind string, filter transaction.Filter) string {
	return kind + ":" + filter.Period.CacheKey()
}

// loadCached serves key from the cache when possible and stores freshly
// computed values. Cache errors only degrade to a direct load.
// The key carries the cache generation read before loading, so a value
// computed across an invalidation lands under a key nobody reads again.
func loadCached[T any](ctx context.Context, s *ReportService, key string, load func(context.Context) (T, error)) (T, error) {
	useCache := s.cache != nil
	if useCache {
		gen, err := s.cache.Generation(ctx)
		if err != nil {
			s.logger.Warn("Report cache generation read failed", zap.String("key", key), zap.Error(err))
			useCache = false
		}
		key += "@" + strconv.FormatUint(gen, 10)
	}

	if useCache {
		var cached T
		found, err := s.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			s.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
		case found:
			return cached, nil
		}
	}

	var (
		value T
		err   error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.ReportLabels(kindOf(key)), func(ctx context.Context) {
		value, err = load(ctx)
	})
	if err != nil {
		return value, err
	}

	if useCache {
		if err := s.cache.Set(ctx, key, value); err != nil {
			s.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

func kindOf(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}

func (s *ReportService) observe(ctx context.Context, span trace.Span, kind string, start time.Time, errp *error) {
	err := *errp
	telemetry.RecordError(span, err)
	span.End()
	if s.recorder != nil {
		s.recorder.RecordReport(ctx, kind, time.Since(start), err)
	}
	var domainErr *shared.DomainError
	if err != nil && !errors.As(err, &domainErr) && !errors.Is(err, context.Canceled) {
		s.logger.Error("Report query failed", zap.String("report", kind), zap.Error(err))
	}
}
