// Package render converts HTML payloads into print-ready PDFs using a
// headless browser. Two engines are available: a plain subprocess invocation
// of the browser's print-to-pdf mode and a DevTools-protocol session.
package render

import (
	"context"
	"time"

	"github.com/localprint/bridge/internal/domain/printing"
)

// Request contains the parameters for rendering HTML to PDF
type Request struct {
	// HTML is the decoded document or fragment to render
	HTML []byte
	// Size defines the output paper dimensions
	Size printing.PageSize
	// Orientation defines portrait or landscape
	Orientation printing.Orientation
	// Timeout bounds the render; non-positive values fall back to 30s
	Timeout time.Duration
}

// Result contains the output from PDF rendering
type Result struct {
	// PDF is the raw PDF file content
	PDF []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// Duration is how long the rendering took
	Duration time.Duration
}

// Renderer defines the interface for rendering HTML to PDF
type Renderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *Request) (*Result, error)
	// Close releases any resources held by the renderer
	Close() error
}

// Error represents an error during PDF rendering
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

// Error codes for rendering failures
const (
	ErrCodeTimeout     = "RENDER_TIMEOUT"
	ErrCodeFailed      = "RENDER_FAILED"
	ErrCodeInvalidHTML = "INVALID_HTML"
	ErrCodeNotFound    = "RENDERER_NOT_FOUND"
)

// NewError creates a new render Error
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

const defaultTimeout = 30 * time.Second

// effectiveTimeout applies the 30s fallback for unset or non-positive values.
func effectiveTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
