package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingExporter keeps exported log records in memory.
type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.records))
	for i, r := range e.records {
		out[i] = r.Body().AsString()
	}
	return out
}

func newTestLoggerProvider(t *testing.T) (*LoggerProvider, *recordingExporter) {
	t.Helper()
	exporter := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return &LoggerProvider{sdk: provider, log: zap.NewNop()}, exporter
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "salesdash-test",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, provider.IsEnabled())
	assert.NoError(t, provider.ForceFlush(ctx))
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewZapOTELCore_DisabledIsNop(t *testing.T) {
	core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "salesdash-test", Level: zapcore.InfoLevel})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))

	disabled := &LoggerProvider{log: zap.NewNop()}
	core = NewZapOTELCore(ZapBridgeConfig{LoggerProvider: disabled})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCore_ExportsAboveLevel(t *testing.T) {
	provider, exporter := newTestLoggerProvider(t)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "salesdash-test",
		LoggerProvider: provider,
		Level:          zapcore.WarnLevel,
	})
	logger := zap.New(core)

	logger.Info("dropped")
	logger.Warn("cache unavailable")
	logger.With(zap.String("kind", "statistics")).Error("report failed")

	assert.Equal(t, []string{"cache unavailable", "report failed"}, exporter.bodies())

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	assert.Equal(t, log.SeverityError, exporter.records[1].Severity())
}

func TestLevelFilterCore(t *testing.T) {
	base, logs := observer.New(zapcore.DebugLevel)

	assert.Same(t, base, newLevelFilterCore(base, zapcore.DebugLevel))

	filtered := newLevelFilterCore(base, zapcore.WarnLevel)
	assert.False(t, filtered.Enabled(zapcore.InfoLevel))
	assert.True(t, filtered.Enabled(zapcore.WarnLevel))

	logger := zap.New(filtered).With(zap.String("component", "import"))
	logger.Debug("ignored")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "import", entry.ContextMap()["component"])
}

func TestNewBridgedLogger(t *testing.T) {
	provider, exporter := newTestLoggerProvider(t)
	base, logs := observer.New(zapcore.InfoLevel)

	logger := NewBridgedLogger(base, NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "salesdash-test",
		LoggerProvider: provider,
		Level:          zapcore.InfoLevel,
	}))
	logger.Info("dataset imported", zap.Int("records", 60))

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, []string{"dataset imported"}, exporter.bodies())
}
