// Package fetch acquires the finished PDF bytes for a print job. Inline
// base64 payloads are decoded in place; locators resolve to local files or
// are fetched over HTTP. Nothing is cached, every job re-resolves from
// scratch.
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/localprint/bridge/internal/domain/printing"
)

// Error represents a failure while acquiring PDF content
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

// Error codes for acquisition failures
const (
	ErrCodeDecodeFailed = "DECODE_FAILED"
	ErrCodeFetchFailed  = "FETCH_FAILED"
)

// NewError creates a new fetch Error
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Resolver acquires the PDF bytes named by a print request
type Resolver interface {
	Resolve(ctx context.Context, req *printing.PrintRequest) ([]byte, error)
}

// ResolverConfig contains configuration for the PDF resolver
type ResolverConfig struct {
	// HTTPClient used for remote locators. The zero client carries no
	// request timeout; cancellation comes from the request context.
	HTTPClient *http.Client
	// Logger for debug output
	Logger *zap.Logger
}

// PDFResolver resolves inline payloads, local files and HTTP locators
type PDFResolver struct {
	client *http.Client
	logger *zap.Logger
}

// NewPDFResolver creates a new PDF resolver
func NewPDFResolver(config *ResolverConfig) *PDFResolver {
	if config == nil {
		config = &ResolverConfig{}
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PDFResolver{
		client: client,
		logger: logger,
	}
}

// Resolve returns the PDF bytes for a PDF-sourced request. Inline base64
// content wins over a locator; a request carrying inline bytes never touches
// the network.
func (r *PDFResolver) Resolve(ctx context.Context, req *printing.PrintRequest) ([]byte, error) {
	if req.PDFBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.PDFBase64))
		if err != nil {
			return nil, NewError(ErrCodeDecodeFailed, "pdfBase64 is not valid base64", err)
		}
		r.logger.Debug("resolved inline PDF", zap.Int("bytes", len(data)))
		return data, nil
	}

	return r.resolveLocator(ctx, req.PDFURL)
}

// resolveLocator treats the locator as a file URI, an existing filesystem
// path or an http/https URL, in that order.
func (r *PDFResolver) resolveLocator(ctx context.Context, locator string) ([]byte, error) {
	locator = strings.TrimSpace(locator)

	if strings.HasPrefix(locator, "file://") {
		return r.readFile(strings.TrimPrefix(locator, "file://"))
	}

	if info, err := os.Stat(locator); err == nil && !info.IsDir() {
		return r.readFile(locator)
	}

	if u, err := url.Parse(locator); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return r.fetchHTTP(ctx, locator)
	}

	return nil, NewError(ErrCodeFetchFailed, "pdfUrl not reachable", nil)
}

func (r *PDFResolver) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(ErrCodeFetchFailed, "failed to read local PDF "+path, err)
	}
	r.logger.Debug("resolved local PDF", zap.String("path", path), zap.Int("bytes", len(data)))
	return data, nil
}

func (r *PDFResolver) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, NewError(ErrCodeFetchFailed, "invalid pdfUrl", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, NewError(ErrCodeFetchFailed, "pdfUrl not reachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewError(ErrCodeFetchFailed,
			fmt.Sprintf("pdf fetch returned status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(ErrCodeFetchFailed, "failed to read pdf response", err)
	}

	r.logger.Debug("fetched remote PDF", zap.String("url", rawURL), zap.Int("bytes", len(data)))
	return data, nil
}

// Ensure PDFResolver implements Resolver
var _ Resolver = (*PDFResolver)(nil)
