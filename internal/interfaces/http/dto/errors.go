package dto

import "net/http"

// Error codes as raised by the domain and pipeline stages. Codes stay
// internal; only the status and the human-readable message reach the wire.

// Request error codes
const (
	// ErrCodeValidation is used when the request fails validation
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when the caller is not local
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeNotFound is used when no route matches
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeInternal is used for unanticipated faults
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Operational error codes raised while running an accepted job
const (
	// ErrCodeDecodeFailed is used when inline base64 content is malformed
	ErrCodeDecodeFailed = "DECODE_FAILED"
	// ErrCodeFetchFailed is used when a PDF locator cannot be resolved
	ErrCodeFetchFailed = "FETCH_FAILED"
	// ErrCodeInvalidHTML is used when the HTML payload cannot be rendered
	ErrCodeInvalidHTML = "INVALID_HTML"
	// ErrCodeRendererNotFound is used when no browser binary is installed
	ErrCodeRendererNotFound = "RENDERER_NOT_FOUND"
	// ErrCodeRenderTimeout is used when rendering exceeds its deadline
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	// ErrCodeRenderFailed is used for any other rendering failure
	ErrCodeRenderFailed = "RENDER_FAILED"
	// ErrCodePrinterNotConfigured is used when no printer is mapped to the size
	ErrCodePrinterNotConfigured = "PRINTER_NOT_CONFIGURED"
	// ErrCodePrinterNotFound is used when the queue does not exist
	ErrCodePrinterNotFound = "PRINTER_NOT_FOUND"
	// ErrCodePaperUnsupported is used when the driver offers no matching media
	ErrCodePaperUnsupported = "PAPER_UNSUPPORTED"
	// ErrCodeSpoolFailed is used when job submission fails
	ErrCodeSpoolFailed = "SPOOL_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Operational
// failures are server faults: the request was valid, the pipeline could
// not complete it.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInternal:     http.StatusInternalServerError,

	ErrCodeDecodeFailed:         http.StatusInternalServerError,
	ErrCodeFetchFailed:          http.StatusInternalServerError,
	ErrCodeInvalidHTML:          http.StatusInternalServerError,
	ErrCodeRendererNotFound:     http.StatusInternalServerError,
	ErrCodeRenderTimeout:        http.StatusInternalServerError,
	ErrCodeRenderFailed:         http.StatusInternalServerError,
	ErrCodePrinterNotConfigured: http.StatusInternalServerError,
	ErrCodePrinterNotFound:      http.StatusInternalServerError,
	ErrCodePaperUnsupported:     http.StatusInternalServerError,
	ErrCodeSpoolFailed:          http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as internal faults.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
