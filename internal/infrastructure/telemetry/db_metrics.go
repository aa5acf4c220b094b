package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	metricsStartKey queryTimingKey = "db_metrics_start_time"

	defaultSlowQueryThreshold = 200 * time.Millisecond
)

// DBMetricsConfig controls statement and pool instrumentation.
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
}

func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{Enabled: true, SlowQueryThreshold: defaultSlowQueryThreshold}
}

// DBMetrics counts and times statements and reports connection pool state.
// Pool gauges are observed at collection time once ObservePool is called.
type DBMetrics struct {
	queries   *Counter
	slow      *Counter
	latency   *Histogram
	poolConns metric.Int64ObservableGauge
	poolMax   metric.Int64ObservableGauge

	meter  metric.Meter
	config DBMetricsConfig
	log    *zap.Logger

	mu   sync.Mutex
	pool metric.Registration
}

func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = defaultSlowQueryThreshold
	}
	m := &DBMetrics{meter: meter, config: cfg, log: logger}

	var errs [5]error
	m.queries, errs[0] = NewCounter(meter, "db_query_total", "Database statements by operation", "{query}")
	m.slow, errs[1] = NewCounter(meter, "db_slow_query_total", "Statements slower than the threshold, by table", "{query}")
	m.latency, errs[2] = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	m.poolConns, errs[3] = meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pooled connections by state"), metric.WithUnit("{connection}"))
	m.poolMax, errs[4] = meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Open connection limit"), metric.WithUnit("{connection}"))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return m, nil
}

// ObservePool reports sqlDB.Stats on every metric collection until Stop.
func (m *DBMetrics) ObservePool(sqlDB *sql.DB) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool != nil {
		return nil
	}
	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(m.poolMax, int64(s.MaxOpenConnections))
		o.ObserveInt64(m.poolConns, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(m.poolConns, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(m.poolConns, int64(s.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		return nil
	}, m.poolConns, m.poolMax)
	if err != nil {
		return err
	}
	m.pool = reg
	return nil
}

// Stop detaches the pool observer. Calling it more than once is harmless.
func (m *DBMetrics) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool == nil {
		return
	}
	if err := m.pool.Unregister(); err != nil {
		m.log.Warn("failed to detach pool observer", zap.Error(err))
	}
	m.pool = nil
}

// RecordQuery accounts one finished statement. Statements over the slow
// threshold are also counted per table.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, took time.Duration) {
	op := AttrDBOperation.String(orDefault(operation, "UNKNOWN"))
	m.queries.Inc(ctx, op)
	m.latency.RecordDuration(ctx, took, op)
	if took > m.config.SlowQueryThreshold {
		m.slow.Inc(ctx, AttrDBTable.String(orDefault(table, "unknown")))
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// DBMetricsPlugin feeds every GORM statement into DBMetrics.
type DBMetricsPlugin struct {
	metrics *DBMetrics
}

func NewDBMetricsPlugin(metrics *DBMetrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

func (p *DBMetricsPlugin) Name() string { return "db_metrics" }

func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	return registerGormHooks(db, p.Name(), hookOptions{}, stampStart(metricsStartKey), func(hook gormHook) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			ctx := tx.Statement.Context
			took, _ := elapsedSince(ctx, metricsStartKey)
			if ctx == nil {
				ctx = context.Background()
			}
			p.metrics.RecordQuery(ctx, operationOf(hook, tx), tx.Statement.Table, took)
		}
	})
}

// RegisterDBMetrics instruments db and starts observing its pool. It
// returns nil metrics when metrics export is off.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || meterProvider == nil || !meterProvider.IsEnabled() {
		return nil, nil
	}
	m, err := NewDBMetrics(meterProvider.Meter("db.client"), cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Use(NewDBMetricsPlugin(m)); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := m.ObservePool(sqlDB); err != nil {
		return nil, err
	}
	logger.Info("database metrics registered", zap.Duration("slow_query_threshold", m.config.SlowQueryThreshold))
	return m, nil
}
