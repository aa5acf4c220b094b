package telemetry

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
)

const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelOperation  = "operation"
	ProfilingLabelReport     = "report_kind"
)

// MaxLabelValueLength truncates label values.
const MaxLabelValueLength = 128

// Per-request identifiers would explode profile series.
var unboundedLabels = []string{"request_id", "trace_id", "span_id", "search"}

// WithProfilingLabels calls fn with the labels attached to its goroutine.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if pairs := sanitizeLabels(labels); len(pairs) > 0 {
		pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
		return
	}
	fn(ctx)
}

// sanitizeLabels returns key/value pairs in key order, skipping empty and
// unbounded labels.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	var pairs []string
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		key, val := sanitizeLabelKey(k), labels[k]
		if key == "" || val == "" || slices.Contains(unboundedLabels, key) {
			continue
		}
		if len(val) > MaxLabelValueLength {
			val = val[:MaxLabelValueLength]
		}
		pairs = append(pairs, key, val)
	}
	return pairs
}

// sanitizeLabelKey maps a key onto [a-z0-9_], turning spaces and dashes into
// underscores.
func sanitizeLabelKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ', r == '-':
			return '_'
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, key)
}

func HTTPRequestLabels(controller, route, method string) map[string]string {
	labels := map[string]string{}
	for k, v := range map[string]string{
		ProfilingLabelController: controller,
		ProfilingLabelRoute:      route,
		ProfilingLabelMethod:     method,
	} {
		if v != "" {
			labels[k] = v
		}
	}
	return labels
}

func ReportLabels(kind string) map[string]string {
	return map[string]string{ProfilingLabelOperation: "report", ProfilingLabelReport: kind}
}

func OperationLabels(operation string) map[string]string {
	return map[string]string{ProfilingLabelOperation: operation}
}
