package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Outcome labels for report and import metrics
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// ReportMetrics records dashboard query and dataset import activity.
type ReportMetrics struct {
	reportTotal    *Counter
	reportDuration *Histogram
	importTotal    *Counter
	importedRows   *Counter
	datasetSize    *Gauge
}

// NewReportMetrics creates the report instruments on meter.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	reportTotal, err := NewCounter(meter, "report_requests_total", "Total number of report computations by kind and outcome", "{request}")
	if err != nil {
		return nil, err
	}
	reportDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "report_duration_seconds",
		Description: "Report computation latency in seconds",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	importTotal, err := NewCounter(meter, "dataset_imports_total", "Total number of dataset imports by outcome", "{import}")
	if err != nil {
		return nil, err
	}
	importedRows, err := NewCounter(meter, "dataset_imported_records_total", "Total number of records written by dataset imports", "{record}")
	if err != nil {
		return nil, err
	}

	datasetSize, err := NewGauge(meter, "dataset_records", "Records held after the last successful import", "{record}")
	if err != nil {
		return nil, err
	}

	return &ReportMetrics{
		reportTotal:    reportTotal,
		reportDuration: reportDuration,
		importTotal:    importTotal,
		importedRows:   importedRows,
		datasetSize:    datasetSize,
	}, nil
}

// RecordReport records one report computation.
func (m *ReportMetrics) RecordReport(ctx context.Context, kind string, elapsed time.Duration, err error) {
	outcome := outcomeOf(err)
	m.reportTotal.Inc(ctx, AttrReportKind.String(kind), AttrReportOutcome.String(outcome))
	m.reportDuration.RecordDuration(ctx, elapsed, AttrReportKind.String(kind))
}

// RecordImport records one dataset import attempt.
func (m *ReportMetrics) RecordImport(ctx context.Context, records int, err error) {
	m.importTotal.Inc(ctx, AttrImportOutcome.String(outcomeOf(err)))
	if err == nil {
		m.importedRows.Add(ctx, int64(records))
		m.datasetSize.Record(ctx, int64(records))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
