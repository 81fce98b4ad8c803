// Package printing orchestrates the print pipeline: a validated request is
// turned into PDF bytes, matched with a printer, and handed to the spooler.
// Each request runs the whole pipeline synchronously on its own goroutine;
// there is no queue and no retry.
package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/localprint/bridge/internal/domain/printing"
	"github.com/localprint/bridge/internal/domain/shared"
	"github.com/localprint/bridge/internal/infrastructure/config"
	"github.com/localprint/bridge/internal/infrastructure/fetch"
	"github.com/localprint/bridge/internal/infrastructure/logger"
	"github.com/localprint/bridge/internal/infrastructure/render"
	"github.com/localprint/bridge/internal/infrastructure/spool"
	"github.com/localprint/bridge/internal/infrastructure/telemetry"
)

// PrintResult reports the outcome of a successfully spooled job.
type PrintResult struct {
	JobID string
}

// PrintService handles print job submission and printer discovery
type PrintService struct {
	store    *config.Store
	fetcher  fetch.Resolver
	renderer render.Renderer
	spooler  spool.Spooler
	metrics  *telemetry.PrintMetrics
	logger   *zap.Logger
}

// NewPrintService creates a new PrintService
func NewPrintService(
	store *config.Store,
	fetcher fetch.Resolver,
	renderer render.Renderer,
	spooler spool.Spooler,
	metrics *telemetry.PrintMetrics,
	log *zap.Logger,
) *PrintService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PrintService{
		store:    store,
		fetcher:  fetcher,
		renderer: renderer,
		spooler:  spooler,
		metrics:  metrics,
		logger:   log,
	}
}

// Print runs one job through the full pipeline. Validation happens first
// and is pure, so a bad request is rejected before any bytes are fetched
// or rendered. Infrastructure failures come back as domain errors carrying
// the infrastructure error code.
func (s *PrintService) Print(ctx context.Context, params printing.PrintRequestParams) (res *PrintResult, err error) {
	req, err := printing.NewPrintRequest(params)
	if err != nil {
		return nil, err
	}

	cfg := s.store.Current()
	ctx, log := logger.WithJobID(ctx, s.logger, req.JobID)

	ctx, span := telemetry.StartServiceSpan(ctx, "print", "submit",
		telemetry.WithAttribute(telemetry.SpanAttrJobID, req.JobID),
		telemetry.WithAttribute(telemetry.SpanAttrContentSource, req.Source.String()),
		telemetry.WithAttribute(telemetry.SpanAttrPageSize, req.PageSize.String()),
	)
	defer span.End()

	s.metrics.JobStarted(ctx)
	defer s.metrics.JobFinished(ctx)
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
			s.metrics.RecordJobOutcome(ctx, req.Source.String(), telemetry.OutcomeFailed, errorCode(err))
			return
		}
		telemetry.SetOK(span)
		s.metrics.RecordJobOutcome(ctx, req.Source.String(), telemetry.OutcomePrinted, "")
	}()

	pdf, err := s.acquire(ctx, span, req, cfg)
	if err != nil {
		log.Error("content acquisition failed", zap.Error(err))
		return nil, toDomainError(err)
	}
	s.metrics.RecordPDFBytes(ctx, req.Source.String(), len(pdf))
	telemetry.SetAttribute(span, telemetry.SpanAttrByteSize, len(pdf))

	printerName, err := resolvePrinter(req, cfg)
	if err != nil {
		return nil, err
	}

	caps, err := s.spooler.Capabilities(ctx, printerName)
	if err != nil {
		log.Error("printer lookup failed", zap.Error(err), zap.String("printer", printerName))
		return nil, toDomainError(err)
	}

	settings, err := printing.BuildSettings(req, caps)
	if err != nil {
		return nil, toDomainError(err)
	}

	job := &printing.ResolvedPrintJob{
		JobID:    req.JobID,
		Source:   req.Source,
		Settings: settings,
		PDF:      pdf,
	}

	// The one audit line per job. Everything the spooler is about to be
	// told is recorded here, before submission, so a job that wedges the
	// print system still leaves a trace. The job id rides in from the
	// context logger.
	log.Info("submitting print job",
		zap.String("printer", settings.Printer),
		zap.String("source", req.Source.String()),
		zap.Int("bytes", len(pdf)),
		zap.Bool("pdfMagic", printing.LooksLikePDF(pdf)),
		zap.String("media", settings.Media),
		zap.Int("copies", settings.Copies),
		zap.String("duplex", settings.Duplex.String()),
		zap.String("orientation", settings.Orientation.String()),
		zap.String("pages", settings.PageRange.String()),
	)

	spoolStart := time.Now()
	telemetry.WithProfilingLabels(ctx, telemetry.PhaseLabels(telemetry.PhaseSpool, map[string]string{
		telemetry.ProfilingLabelPrinter: settings.Printer,
	}), func(c context.Context) {
		err = s.spooler.Submit(c, job)
	})
	if err != nil {
		log.Error("spool submission failed", zap.Error(err), zap.String("printer", settings.Printer))
		return nil, toDomainError(err)
	}
	s.metrics.RecordSpoolDuration(ctx, settings.Printer, time.Since(spoolStart))
	telemetry.AddEvent(span, "spool_submitted",
		telemetry.SpanAttrPrinter, settings.Printer,
		telemetry.SpanAttrMedia, settings.Media,
	)

	return &PrintResult{JobID: req.JobID}, nil
}

// Printers lists the installed printer queues by name.
func (s *PrintService) Printers(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "print", "printers")
	defer span.End()

	names, err := s.spooler.Printers(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, toDomainError(err)
	}

	telemetry.SetOK(span)
	return names, nil
}

// acquire produces the finished PDF bytes for the request: PDF sources
// resolve through the fetcher, HTML sources decode and render. Each path
// runs under its pipeline-phase profiling label.
func (s *PrintService) acquire(ctx context.Context, span trace.Span, req *printing.PrintRequest, cfg *config.Config) ([]byte, error) {
	if req.Source == printing.SourcePDF {
		var data []byte
		var err error
		telemetry.WithProfilingLabels(ctx, telemetry.PhaseLabels(telemetry.PhaseFetch, nil), func(c context.Context) {
			data, err = s.fetcher.Resolve(c, req)
		})
		return data, err
	}

	renderReq := &render.Request{
		HTML:        render.DecodeContent(req.HTMLBase64),
		Size:        req.PageSize,
		Orientation: req.Orientation,
		Timeout:     cfg.Render.EffectiveTimeout(),
	}

	var result *render.Result
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.PhaseLabels(telemetry.PhaseRender, map[string]string{
		telemetry.ProfilingLabelEngine: cfg.Render.Engine,
	}), func(c context.Context) {
		result, err = s.renderer.Render(c, renderReq)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRenderDuration(ctx, cfg.Render.Engine, req.PageSize.String(), result.Duration)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRenderEngine, cfg.Render.Engine,
		telemetry.SpanAttrPageCount, result.PageCount,
	)
	return result.PDF, nil
}

// resolvePrinter picks the destination queue: an explicit override wins,
// otherwise the configured printer for the requested page size.
func resolvePrinter(req *printing.PrintRequest, cfg *config.Config) (string, error) {
	if req.PrinterOverride != "" {
		return req.PrinterOverride, nil
	}

	var name string
	switch req.PageSize {
	case printing.PageSizeA3:
		name = cfg.Printers.A3
	case printing.PageSizeA4:
		name = cfg.Printers.A4
	}
	if name == "" {
		return "", shared.NewDomainError("PRINTER_NOT_CONFIGURED",
			fmt.Sprintf("%s printer not configured", req.PageSize))
	}
	return name, nil
}

// toDomainError converts infrastructure errors to domain errors so the
// HTTP layer sees one error shape. Codes and messages carry through;
// anything unrecognized passes unchanged and is treated as internal.
func toDomainError(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return shared.NewDomainError(fetchErr.Code, fetchErr.Message)
	}

	var renderErr *render.Error
	if errors.As(err, &renderErr) {
		return shared.NewDomainError(renderErr.Code, renderErr.Message)
	}

	var spoolErr *spool.Error
	if errors.As(err, &spoolErr) {
		return shared.NewDomainError(spoolErr.Code, spoolErr.Message)
	}

	return err
}

// errorCode extracts the domain error code for metrics labels.
func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(toDomainError(err), &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
