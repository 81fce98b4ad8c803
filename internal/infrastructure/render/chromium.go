package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/localprint/bridge/internal/domain/printing"
)

// stderrGrace is how long a killed render process gets to flush diagnostics
// before we give up on its error stream.
const stderrGrace = 2 * time.Second

// ChromiumConfig contains configuration for the subprocess renderer
type ChromiumConfig struct {
	// BinaryPath is an explicit browser executable, bypassing autodetection
	BinaryPath string
	// TempDir for scratch files during rendering; empty means the system temp
	TempDir string
	// NoSandbox runs the browser without its sandbox (required in containers)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// ChromiumRenderer renders HTML to PDF by invoking the browser's
// print-to-pdf mode as a short-lived subprocess per job.
type ChromiumRenderer struct {
	config *ChromiumConfig
	logger *zap.Logger
}

// NewChromiumRenderer creates a new subprocess-based PDF renderer. The
// browser binary is not resolved here; lookup happens lazily on first render
// so the bridge can still serve PDF passthrough jobs on hosts without one.
func NewChromiumRenderer(config *ChromiumConfig) *ChromiumRenderer {
	if config == nil {
		config = &ChromiumConfig{}
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChromiumRenderer{
		config: config,
		logger: logger,
	}
}

// Render converts HTML content to PDF
func (r *ChromiumRenderer) Render(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, NewError(ErrCodeInvalidHTML, "render request is nil", nil)
	}
	if len(bytes.TrimSpace(req.HTML)) == 0 {
		return nil, NewError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if !req.Size.IsValid() {
		return nil, NewError(ErrCodeFailed, "invalid page size: "+req.Size.String(), nil)
	}

	binary := r.config.BinaryPath
	if binary == "" {
		var err error
		if binary, err = LocateBinary(); err != nil {
			return nil, err
		}
	}

	startTime := time.Now()
	timeout := effectiveTimeout(req.Timeout)

	doc := PrepareDocument(req.HTML, req.Size, req.Orientation)

	htmlFile, err := os.CreateTemp(r.config.TempDir, "printbridge-*.html")
	if err != nil {
		return nil, NewError(ErrCodeFailed, "failed to create temp HTML file", err)
	}
	htmlPath := htmlFile.Name()
	defer r.removeTemp(htmlPath)

	if _, err := htmlFile.Write(doc); err != nil {
		htmlFile.Close()
		return nil, NewError(ErrCodeFailed, "failed to write HTML to temp file", err)
	}
	htmlFile.Close()

	pdfFile, err := os.CreateTemp(r.config.TempDir, "printbridge-*.pdf")
	if err != nil {
		return nil, NewError(ErrCodeFailed, "failed to create temp PDF file", err)
	}
	pdfPath := pdfFile.Name()
	pdfFile.Close()
	defer r.removeTemp(pdfPath)

	args := buildChromiumArgs(pdfPath, htmlPath, r.config.NoSandbox)

	r.logger.Debug("executing headless browser",
		zap.String("binary", binary),
		zap.Strings("args", args))

	cmd := exec.Command(binary, args...)
	setProcAttrs(cmd)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, NewError(ErrCodeFailed, "failed to start renderer process", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		// Fall through to result handling; exit status is judged by whether
		// the output file materialized.
	case <-ctx.Done():
		r.killAndDrain(cmd, done)
		return nil, NewError(ErrCodeTimeout, "PDF rendering was cancelled", ctx.Err())
	case <-timer.C:
		r.killAndDrain(cmd, done)
		msg := fmt.Sprintf("PDF rendering timed out after %v", timeout)
		if diag := strings.TrimSpace(stderr.String()); diag != "" {
			msg += ": " + diag
		}
		return nil, NewError(ErrCodeTimeout, msg, nil)
	}

	pdfData, err := os.ReadFile(pdfPath)
	if err != nil || len(pdfData) == 0 {
		r.logger.Error("headless browser produced no output",
			zap.String("stderr", stderr.String()))
		if diag := strings.TrimSpace(stderr.String()); diag != "" {
			return nil, NewError(ErrCodeFailed, "rendering failed: "+diag, err)
		}
		return nil, NewError(ErrCodeFailed, "rendering failed: no output produced", err)
	}

	pageCount := printing.EstimatePageCount(pdfData)
	renderDuration := time.Since(startTime)

	r.logger.Info("PDF rendered successfully",
		zap.Int("bytes", len(pdfData)),
		zap.Int("pages", pageCount),
		zap.Duration("duration", renderDuration))

	return &Result{
		PDF:       pdfData,
		PageCount: pageCount,
		Duration:  renderDuration,
	}, nil
}

// killAndDrain terminates the render process together with its descendants
// and waits out a short grace window so stderr captures whatever diagnostics
// the dying process managed to write.
func (r *ChromiumRenderer) killAndDrain(cmd *exec.Cmd, done <-chan error) {
	killTree(cmd)
	select {
	case <-done:
	case <-time.After(stderrGrace):
		r.logger.Warn("renderer process did not exit after kill")
	}
}

func (r *ChromiumRenderer) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("failed to remove temp file",
			zap.String("path", path),
			zap.Error(err))
	}
}

// buildChromiumArgs constructs the command line for a print-to-pdf run.
func buildChromiumArgs(pdfPath, htmlPath string, noSandbox bool) []string {
	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-pdf-header-footer",
		"--disable-extensions",
		"--disable-background-networking",
	}
	if noSandbox {
		args = append(args, "--no-sandbox")
	}
	args = append(args,
		"--print-to-pdf="+pdfPath,
		fileURL(htmlPath),
	)
	return args
}

// fileURL converts a filesystem path into a file:// URL the browser accepts
// on every platform.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

// Close releases resources (no-op for the subprocess renderer)
func (r *ChromiumRenderer) Close() error {
	return nil
}

// Ensure ChromiumRenderer implements Renderer
var _ Renderer = (*ChromiumRenderer)(nil)
