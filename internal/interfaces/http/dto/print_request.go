package dto

import (
	"github.com/localprint/bridge/internal/domain/printing"
)

// PrintRequest is the wire form of a print job. Field names follow the
// protocol exactly; semantic validation happens in the domain layer so
// rejection messages are the same no matter how a bad value arrives.
type PrintRequest struct {
	JobID      string `json:"jobId"`
	IsPdf      bool   `json:"isPdf"`
	PdfURL     string `json:"pdfUrl"`
	HTMLBase64 string `json:"htmlBase64"`
	PageSizeID int    `json:"pageSizeId"`
	// IsPageOrientationPortrait is tri-state on the wire: an absent field
	// defaults to portrait, an explicit false selects landscape.
	IsPageOrientationPortrait *bool  `json:"isPageOrientationPortrait"`
	IsDuplexSingleSided       bool   `json:"isDuplexSingleSided"`
	PrintPageRange            string `json:"printPageRange" binding:"omitempty,pagerange"`
	Copies                    int    `json:"copies"`
	PdfBase64                 string `json:"pdfBase64"`
	PrinterName               string `json:"printerName"`
}

// ToParams converts the wire request into domain request parameters.
func (r *PrintRequest) ToParams() printing.PrintRequestParams {
	return printing.PrintRequestParams{
		JobID:             r.JobID,
		IsPDF:             r.IsPdf,
		PDFURL:            r.PdfURL,
		PDFBase64:         r.PdfBase64,
		HTMLBase64:        r.HTMLBase64,
		PageSizeID:        r.PageSizeID,
		Portrait:          r.IsPageOrientationPortrait,
		DuplexSingleSided: r.IsDuplexSingleSided,
		PageRangeExpr:     r.PrintPageRange,
		Copies:            r.Copies,
		PrinterName:       r.PrinterName,
	}
}
