package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tracingStartKey queryTimingKey = "otel_query_start_time"

// DBTracingConfig controls statement spans. LogFullSQL keeps bound query
// variables on spans and is refused in production.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
}

func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{SlowQueryThresh: defaultSlowQueryThreshold, DBName: "salesdash"}
}

// DBTracingPlugin installs otelgorm and decorates its statement spans with
// row counts, the table name and a slow query event.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQueryThreshold
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm is a no-op when tracing is disabled. Registering twice
// on the same db fails.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	err := registerGormHooks(db, "otel_slow_query", hookOptions{beforeSpanEnd: true}, stampStart(tracingStartKey),
		func(gormHook) func(*gorm.DB) { return p.annotateSpan })
	if err != nil {
		return err
	}
	p.logger.Info("database tracing enabled", zap.Duration("slow_query_threshold", p.config.SlowQueryThresh))
	return nil
}

func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{attribute.Int64("db.rows_affected", max(db.Statement.RowsAffected, 0))}
	if t := db.Statement.Table; t != "" {
		attrs = append(attrs, attribute.String("db.sql.table", t))
	}
	span.SetAttributes(attrs...)

	if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	took, ok := elapsedSince(ctx, tracingStartKey)
	if !ok || took <= p.config.SlowQueryThresh {
		return
	}
	ms := took.Milliseconds()
	span.SetAttributes(attribute.Bool("db.slow_query", true), attribute.Int64("db.query_duration_ms", ms))
	span.AddEvent("slow_query_warning", trace.WithAttributes(
		attribute.Int64("duration_ms", ms),
		attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
	))
}
