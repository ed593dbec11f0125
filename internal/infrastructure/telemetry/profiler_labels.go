package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelOperation = "operation"
	ProfilingLabelWilaya    = "wilaya"
	ProfilingLabelRoute     = "route"
)

// MaxLabelValueLength bounds label values to keep profile series small.
const MaxLabelValueLength = 128

// HighCardinalityLabels are dropped from profiling labels.
// Read-only after init.
var HighCardinalityLabels = map[string]bool{
	"order_id":     true,
	"order_number": true,
	"session_id":   true,
	"phone":        true,
	"request_id":   true,
	"trace_id":     true,
	"span_id":      true,
}

// WithProfilingLabels runs fn with pprof labels attached so Pyroscope can
// slice samples by them. Without a running profiler the labels are inert.
//
//	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("checkout.place_order", nil), func(ctx context.Context) {
//	    order, err = s.place(ctx, c, input)
//	})
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// OperationLabels returns labels naming an operation plus any extras.
func OperationLabels(operation string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		labels[k] = v
	}
	labels[ProfilingLabelOperation] = operation
	return labels
}

// sanitizeLabels returns sorted key/value pairs with empty entries and
// high-cardinality keys removed and long values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if value == "" || HighCardinalityLabels[key] {
			continue
		}
		clean := sanitizeLabelKey(key)
		if clean == "" || HighCardinalityLabels[clean] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = truncateUTF8(value, MaxLabelValueLength)
		}
		pairs = append(pairs, clean, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases a key and keeps only [a-z0-9_].
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
// Wilaya names are Arabic, so a byte cut could land mid-rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
