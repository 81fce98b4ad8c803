// Package spool talks to the operating system's print system through the
// CUPS command line tools: lpstat enumerates queues, lpoptions reports
// driver capabilities, lp submits jobs.
package spool

import (
	"context"

	"github.com/localprint/bridge/internal/domain/printing"
)

// Spooler defines the interface to the OS print spooler
type Spooler interface {
	// Printers lists the names of all installed printer queues
	Printers(ctx context.Context) ([]string, error)
	// Capabilities reports duplex support and the enumerated media names of
	// one printer
	Capabilities(ctx context.Context, name string) (*printing.PrinterCapabilities, error)
	// Submit hands a prepared job to the spooler. The call is synchronous
	// and non-interactive; it returns once the spooler has accepted the job.
	Submit(ctx context.Context, job *printing.ResolvedPrintJob) error
}

// Error represents a failure while talking to the print system
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes for spooler failures
const (
	ErrCodePrinterNotFound = "PRINTER_NOT_FOUND"
	ErrCodeSubmitFailed    = "SPOOL_FAILED"
)

// NewError creates a new spool Error
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
