package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/localprint/bridge/internal/domain/printing"
)

// DevToolsConfig contains configuration for the DevTools-protocol renderer
type DevToolsConfig struct {
	// BinaryPath is an explicit browser executable, bypassing autodetection
	BinaryPath string
	// RemoteURL points at an already-running browser instance (optional).
	// When set, no local binary is looked up or launched.
	RemoteURL string
	// NoSandbox runs the browser without its sandbox (required in containers)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// DevToolsRenderer renders HTML to PDF over the Chrome DevTools Protocol,
// reusing one browser instance across jobs instead of spawning per render.
type DevToolsRenderer struct {
	config *DevToolsConfig
	logger *zap.Logger

	initOnce    sync.Once
	initErr     error
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewDevToolsRenderer creates a new DevTools-based PDF renderer. Browser
// lookup and allocator setup are deferred to the first render.
func NewDevToolsRenderer(config *DevToolsConfig) *DevToolsRenderer {
	if config == nil {
		config = &DevToolsConfig{}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DevToolsRenderer{
		config: config,
		logger: logger,
	}
}

// ensureAllocator initializes the browser allocator exactly once.
func (r *DevToolsRenderer) ensureAllocator() error {
	r.initOnce.Do(func() {
		if r.config.RemoteURL != "" {
			r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
			return
		}

		binary := r.config.BinaryPath
		if binary == "" {
			var err error
			if binary, err = LocateBinary(); err != nil {
				r.initErr = err
				return
			}
		}

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.ExecPath(binary),
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-first-run", true),
			chromedp.Flag("disable-default-apps", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-background-networking", true),
			chromedp.Flag("font-render-hinting", "none"),
		)
		if r.config.NoSandbox {
			opts = append(opts, chromedp.Flag("no-sandbox", true))
		}

		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	})
	return r.initErr
}

// Render converts HTML content to PDF
func (r *DevToolsRenderer) Render(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, NewError(ErrCodeInvalidHTML, "render request is nil", nil)
	}
	if len(bytes.TrimSpace(req.HTML)) == 0 {
		return nil, NewError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if !req.Size.IsValid() {
		return nil, NewError(ErrCodeFailed, "invalid page size: "+req.Size.String(), nil)
	}

	if err := r.ensureAllocator(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	timeout := effectiveTimeout(req.Timeout)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	doc := string(PrepareDocument(req.HTML, req.Size, req.Orientation))

	// Paper dimensions are supplied in portrait inches; the landscape flag
	// performs the swap on the browser side.
	width, height := req.Size.Dimensions()
	landscape := req.Orientation == printing.OrientationLandscape

	var pdfData []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(mmToInches(float64(width))).
				WithPaperHeight(mmToInches(float64(height))).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithLandscape(landscape).
				WithDisplayHeaderFooter(false).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError(ErrCodeTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewError(ErrCodeTimeout, "PDF rendering was cancelled", err)
		}

		r.logger.Error("devtools rendering failed", zap.Error(err))
		return nil, NewError(ErrCodeFailed, "rendering failed: "+err.Error(), err)
	}

	if len(pdfData) == 0 {
		return nil, NewError(ErrCodeFailed, "rendering failed: no output produced", nil)
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

// Close releases the browser allocator held by the renderer
func (r *DevToolsRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}

// Ensure DevToolsRenderer implements Renderer
var _ Renderer = (*DevToolsRenderer)(nil)
