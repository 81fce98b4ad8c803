package telemetry

import (
	"context"
	"maps"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys. Phases name the stages of the print pipeline so
// profiles can be sliced by where the time went.
const (
	ProfilingLabelPhase   = "phase"
	ProfilingLabelEngine  = "engine"
	ProfilingLabelPrinter = "printer"
	ProfilingLabelSource  = "source"
)

// Pipeline phase values.
const (
	PhaseFetch  = "fetch"
	PhaseRender = "render"
	PhaseSpool  = "spool"
)

// MaxLabelValueLength caps label values so a runaway printer name or
// locator cannot blow up series cardinality in Pyroscope.
const MaxLabelValueLength = 128

// HighCardinalityLabels contains label keys that are silently dropped.
// One series per job or per request would exhaust Pyroscope memory.
var HighCardinalityLabels = map[string]bool{
	"job_id":     true,
	"request_id": true,
	"trace_id":   true,
	"span_id":    true,
}

// WithProfilingLabels wraps a function with profiling labels for Pyroscope.
// Labels allow slicing and filtering profiling data in the Pyroscope UI.
//
// Example usage:
//
//	telemetry.WithProfilingLabels(ctx, telemetry.PhaseLabels(telemetry.PhaseRender, map[string]string{
//	    telemetry.ProfilingLabelEngine: "chromium",
//	}), func(c context.Context) {
//	    result, err = renderer.Render(c, req)
//	})
//
// The labels map is copied internally, so it is safe to modify the
// original map after calling this function.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if len(labels) == 0 {
		fn(ctx)
		return
	}

	labelsCopy := make(map[string]string, len(labels))
	maps.Copy(labelsCopy, labels)

	labelPairs := sanitizeLabels(labelsCopy)
	if len(labelPairs) == 0 {
		fn(ctx)
		return
	}

	pyroscope.TagWrapper(ctx, pyroscope.Labels(labelPairs...), fn)
}

// PhaseLabels creates labels for a pipeline phase.
func PhaseLabels(phase string, extraLabels map[string]string) map[string]string {
	labels := make(map[string]string, len(extraLabels)+1)
	labels[ProfilingLabelPhase] = phase
	maps.Copy(labels, extraLabels)

	return labels
}

// sanitizeLabels validates and sanitizes labels for Pyroscope.
// - Filters out high-cardinality labels
// - Truncates values that are too long
// - Removes empty keys/values
// - Returns a deterministic slice of key-value pairs
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	pairs := make([]string, 0, len(labels)*2)

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := labels[key]

		if key == "" || value == "" {
			continue
		}

		if HighCardinalityLabels[key] {
			continue
		}

		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}

		sanitizedKey := sanitizeLabelKey(key)
		if sanitizedKey == "" {
			continue
		}

		pairs = append(pairs, sanitizedKey, value)
	}

	return pairs
}

// sanitizeLabelKey ensures label keys follow the snake_case convention.
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")

	result := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			result = append(result, c)
		}
	}

	return string(result)
}
