package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PrintMetrics provides job-level metrics for the print pipeline. It
// tracks how many jobs run, how they end, how long the expensive stages
// take, and how large the documents are. All recording methods accept a
// nil receiver and record nothing, so callers need no guard when metrics
// are not wired.
type PrintMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	jobsTotal *Counter

	// In-flight tracking
	jobsInFlight *UpDownCounter

	// Distributions
	renderDuration *Histogram
	spoolDuration  *Histogram
	pdfBytes       *Histogram

	// Point-in-time state
	tempFiles *Gauge
}

// PrintMetricsConfig holds configuration for print metrics.
type PrintMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewPrintMetrics creates a new PrintMetrics instance.
func NewPrintMetrics(cfg PrintMetricsConfig) (*PrintMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PrintMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	pm.jobsTotal, err = NewCounter(
		cfg.Meter,
		"printbridge_jobs_total",
		"Total number of print jobs processed",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	pm.jobsInFlight, err = NewUpDownCounter(
		cfg.Meter,
		"printbridge_jobs_in_flight",
		"Number of print jobs currently being processed",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	pm.renderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "printbridge_render_duration_seconds",
		Description: "Time spent rendering HTML to PDF",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	pm.spoolDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "printbridge_spool_duration_seconds",
		Description: "Time spent submitting jobs to the print spooler",
		Unit:        "s",
		Boundaries:  SpoolDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	pm.pdfBytes, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "printbridge_pdf_bytes",
		Description: "Size of the PDF payload handed to the spooler",
		Unit:        "By",
		Boundaries:  PDFSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	pm.tempFiles, err = NewGauge(
		cfg.Meter,
		"printbridge_temp_files",
		"Render temp files on disk after the last sweep",
		"{files}",
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// =============================================================================
// Job Metrics
// =============================================================================

// Outcome labels how a job ended.
type Outcome string

const (
	OutcomePrinted Outcome = "printed"
	OutcomeFailed  Outcome = "failed"
)

// JobStarted marks a job as in flight. Pair with JobFinished.
func (pm *PrintMetrics) JobStarted(ctx context.Context) {
	if pm == nil {
		return
	}
	pm.jobsInFlight.Add(ctx, 1)
}

// JobFinished removes a job from the in-flight count.
func (pm *PrintMetrics) JobFinished(ctx context.Context) {
	if pm == nil {
		return
	}
	pm.jobsInFlight.Add(ctx, -1)
}

// RecordJobOutcome records a completed job. The errorCode attribute is
// only attached on failure so success series stay narrow.
func (pm *PrintMetrics) RecordJobOutcome(ctx context.Context, source string, outcome Outcome, errorCode string) {
	if pm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrContentSource.String(source),
		AttrOutcome.String(string(outcome)),
	}
	if outcome == OutcomeFailed && errorCode != "" {
		attrs = append(attrs, AttrErrorCode.String(errorCode))
	}
	pm.jobsTotal.Inc(ctx, attrs...)
}

// RecordRenderDuration records how long a render took.
func (pm *PrintMetrics) RecordRenderDuration(ctx context.Context, engine, pageSize string, d time.Duration) {
	if pm == nil {
		return
	}
	pm.renderDuration.RecordDuration(ctx, d,
		AttrRenderEngine.String(engine),
		AttrPageSize.String(pageSize),
	)
}

// RecordSpoolDuration records how long spool submission took.
func (pm *PrintMetrics) RecordSpoolDuration(ctx context.Context, printer string, d time.Duration) {
	if pm == nil {
		return
	}
	pm.spoolDuration.RecordDuration(ctx, d,
		AttrPrinter.String(printer),
	)
}

// RecordPDFBytes records the size of a finished document.
func (pm *PrintMetrics) RecordPDFBytes(ctx context.Context, source string, size int) {
	if pm == nil {
		return
	}
	pm.pdfBytes.Record(ctx, float64(size),
		AttrContentSource.String(source),
	)
}

// RecordTempFiles records how many bridge temp files a sweep left on disk.
func (pm *PrintMetrics) RecordTempFiles(ctx context.Context, count int) {
	if pm == nil {
		return
	}
	pm.tempFiles.Record(ctx, int64(count))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPrintMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
