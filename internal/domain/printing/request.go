package printing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/localprint/bridge/internal/domain/shared"
)

// PrintRequestParams carries the raw, wire-level fields of a print request.
// The HTTP layer fills this in verbatim; NewPrintRequest is the single place
// that classifies and validates it.
type PrintRequestParams struct {
	JobID      string
	IsPDF      bool
	PDFURL     string
	PDFBase64  string
	HTMLBase64 string
	PageSizeID int
	// Portrait is a tri-state flag: nil means the caller did not send the
	// field, which defaults to portrait.
	Portrait          *bool
	DuplexSingleSided bool
	PageRangeExpr     string
	Copies            int
	PrinterName       string
}

// PrintRequest is a validated, classified print request. Construct it with
// NewPrintRequest; a zero value is not meaningful.
type PrintRequest struct {
	JobID             string
	Source            ContentSource
	PDFURL            string
	PDFBase64         string
	HTMLBase64        string
	PageSize          PageSize
	Orientation       Orientation
	DuplexSingleSided bool
	PageRange         *PageRange
	// CopiesRequested is what the caller asked for. It is recorded for the
	// audit line only; settings always submit exactly one copy.
	CopiesRequested int
	PrinterOverride string
}

// NewPrintRequest validates params and classifies the content source. It is
// pure: no I/O happens here, so a bad request is rejected before any bytes
// are fetched or rendered.
//
// Source priority: an explicit isPdf flag or the presence of either PDF
// locator field means PDF; everything else is treated as HTML.
func NewPrintRequest(p PrintRequestParams) (*PrintRequest, error) {
	size := PageSize(p.PageSizeID)
	if !size.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("pageSizeId must be 1 (A3) or 2 (A4), got %d", p.PageSizeID))
	}

	source := SourceHTML
	if p.IsPDF || p.PDFURL != "" || p.PDFBase64 != "" {
		source = SourcePDF
	}

	switch source {
	case SourcePDF:
		if p.PDFURL == "" && p.PDFBase64 == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "pdfUrl or pdfBase64 required")
		}
	case SourceHTML:
		if p.HTMLBase64 == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "htmlBase64 required")
		}
	}

	pageRange, err := ParsePageRange(p.PageRangeExpr)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}

	orientation := OrientationPortrait
	if p.Portrait != nil && !*p.Portrait {
		orientation = OrientationLandscape
	}

	jobID := p.JobID
	if jobID == "" {
		jobID = uuid.New().String()
	}

	return &PrintRequest{
		JobID:             jobID,
		Source:            source,
		PDFURL:            p.PDFURL,
		PDFBase64:         p.PDFBase64,
		HTMLBase64:        p.HTMLBase64,
		PageSize:          size,
		Orientation:       orientation,
		DuplexSingleSided: p.DuplexSingleSided,
		PageRange:         pageRange,
		CopiesRequested:   p.Copies,
		PrinterOverride:   p.PrinterName,
	}, nil
}

// PrintSettings is the abstract spooler option set for one job. The spool
// adapter translates it into concrete lp options.
type PrintSettings struct {
	Printer string
	// Copies is always 1. The field exists so the audit line and the spool
	// adapter share one explicit value instead of an implicit convention.
	Copies int
	// Duplex is empty when the printer has no duplex unit; the option is then
	// omitted entirely rather than forced to simplex.
	Duplex      DuplexMode
	PageRange   *PageRange
	Media       string
	Orientation Orientation
}

// BuildSettings derives the spooler settings for a validated request on the
// given printer. Duplex is set only when the printer advertises the
// capability: the single-sided flag maps to simplex, everything else to the
// long-edge duplex binding. The media name comes from ResolvePaper.
func BuildSettings(req *PrintRequest, caps *PrinterCapabilities) (PrintSettings, error) {
	media, err := ResolvePaper(caps, req.PageSize)
	if err != nil {
		return PrintSettings{}, err
	}

	settings := PrintSettings{
		Printer:     caps.Name,
		Copies:      1,
		PageRange:   req.PageRange,
		Media:       media,
		Orientation: req.Orientation,
	}

	if caps.Duplex {
		if req.DuplexSingleSided {
			settings.Duplex = DuplexSimplex
		} else {
			settings.Duplex = DuplexLongEdge
		}
	}

	return settings, nil
}

// ResolvedPrintJob is the fully prepared unit of work handed to the spooler:
// built once per accepted request, immutable, submitted exactly once.
type ResolvedPrintJob struct {
	JobID    string
	Source   ContentSource
	Settings PrintSettings
	PDF      []byte
}
