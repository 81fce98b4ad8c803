package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/localprint/bridge/internal/application/printing"
	domain "github.com/localprint/bridge/internal/domain/printing"
	"github.com/localprint/bridge/internal/infrastructure/config"
	"github.com/localprint/bridge/internal/infrastructure/render"
	"github.com/localprint/bridge/internal/infrastructure/spool"
	"github.com/localprint/bridge/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// =============================================================================
// Pipeline stubs
// =============================================================================

type stubSpooler struct {
	printerNames []string
	printersErr  error
	caps         *domain.PrinterCapabilities
	capsErr      error
	submitErr    error
	submitted    []*domain.ResolvedPrintJob
}

func (s *stubSpooler) Printers(ctx context.Context) ([]string, error) {
	return s.printerNames, s.printersErr
}

func (s *stubSpooler) Capabilities(ctx context.Context, name string) (*domain.PrinterCapabilities, error) {
	if s.capsErr != nil {
		return nil, s.capsErr
	}
	if s.caps != nil {
		return s.caps, nil
	}
	return &domain.PrinterCapabilities{Name: name, Duplex: true, Papers: []string{"A3", "A4"}}, nil
}

func (s *stubSpooler) Submit(ctx context.Context, job *domain.ResolvedPrintJob) error {
	s.submitted = append(s.submitted, job)
	return s.submitErr
}

type stubResolver struct {
	pdf []byte
	err error
}

func (s *stubResolver) Resolve(ctx context.Context, req *domain.PrintRequest) ([]byte, error) {
	return s.pdf, s.err
}

type stubRenderer struct {
	err error
}

func (s *stubRenderer) Render(ctx context.Context, req *render.Request) (*render.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &render.Result{PDF: []byte("%PDF-1.4 rendered"), PageCount: 1}, nil
}

func (s *stubRenderer) Close() error { return nil }

// =============================================================================
// Test harness
// =============================================================================

type bridgeEnv struct {
	spooler  *stubSpooler
	resolver *stubResolver
	renderer *stubRenderer
	svc      *printing.PrintService
	router   *gin.Engine
}

func newBridge(t *testing.T) *bridgeEnv {
	t.Helper()

	env := &bridgeEnv{
		spooler:  &stubSpooler{printerNames: []string{"Office_A4", "Warehouse_A3"}},
		resolver: &stubResolver{pdf: []byte("%PDF-1.7 fetched")},
		renderer: &stubRenderer{},
	}

	store := config.NewStore(&config.Config{
		Printers: config.PrintersConfig{A3: "Warehouse_A3", A4: "Office_A4"},
		Render:   config.RenderConfig{Engine: "chromium", Timeout: 5 * time.Second},
	})
	env.svc = printing.NewPrintService(store, env.resolver, env.renderer, env.spooler, nil, zap.NewNop())

	env.router = gin.New()
	RegisterRoutes(env.router, NewPrintHandler(env.svc), NewSystemHandler())
	return env
}

func (env *bridgeEnv) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/print", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *bridgeEnv) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

// =============================================================================
// POST /print
// =============================================================================

func TestPrint_InlinePDF(t *testing.T) {
	env := newBridge(t)
	env.resolver.pdf = []byte("%PDF-1.7 inline")
	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.7 inline"))

	w := env.post(`{"jobId":"job-1","isPdf":true,"pdfBase64":"` + pdf + `","pageSizeId":2}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"jobId":"job-1","message":"printed"}`, w.Body.String())

	require.Len(t, env.spooler.submitted, 1)
	job := env.spooler.submitted[0]
	assert.Equal(t, "job-1", job.JobID)
	assert.Equal(t, []byte("%PDF-1.7 inline"), job.PDF)
	assert.Equal(t, "Office_A4", job.Settings.Printer)
}

func TestPrint_HTML(t *testing.T) {
	env := newBridge(t)
	html := base64.StdEncoding.EncodeToString([]byte("<p>receipt</p>"))

	w := env.post(`{"jobId":"job-2","htmlBase64":"` + html + `","pageSizeId":1}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"jobId":"job-2","message":"printed"}`, w.Body.String())

	require.Len(t, env.spooler.submitted, 1)
	assert.Equal(t, "Warehouse_A3", env.spooler.submitted[0].Settings.Printer)
	assert.Equal(t, []byte("%PDF-1.4 rendered"), env.spooler.submitted[0].PDF)
}

func TestPrint_GeneratedJobID(t *testing.T) {
	env := newBridge(t)
	html := base64.StdEncoding.EncodeToString([]byte("<p>x</p>"))

	w := env.post(`{"htmlBase64":"` + html + `","pageSizeId":2}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.spooler.submitted, 1)
	assert.NotEmpty(t, env.spooler.submitted[0].JobID)
	assert.Contains(t, w.Body.String(), env.spooler.submitted[0].JobID)
}

func TestPrint_InvalidPageSize(t *testing.T) {
	env := newBridge(t)

	w := env.post(`{"jobId":"job-3","htmlBase64":"PGI+","pageSizeId":3}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"pageSizeId must be 1 (A3) or 2 (A4), got 3"}`, w.Body.String())
	assert.Empty(t, env.spooler.submitted)
}

func TestPrint_BadPageRangeStopsAtBinding(t *testing.T) {
	env := newBridge(t)

	w := env.post(`{"jobId":"job-4","htmlBase64":"PGI+","pageSizeId":2,"printPageRange":"7-2"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, parseErr := domain.ParsePageRange("7-2")
	require.Error(t, parseErr)
	assert.Contains(t, w.Body.String(), "page range")
	assert.Empty(t, env.spooler.submitted)
}

func TestPrint_MalformedBody(t *testing.T) {
	env := newBridge(t)

	w := env.post(`{"jobId":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"invalid request body"}`, w.Body.String())
}

func TestPrint_PrinterNotConfigured(t *testing.T) {
	env := newBridge(t)
	store := config.NewStore(&config.Config{
		Printers: config.PrintersConfig{A4: "Office_A4"},
		Render:   config.RenderConfig{Engine: "chromium", Timeout: 5 * time.Second},
	})
	svc := printing.NewPrintService(store, env.resolver, env.renderer, env.spooler, nil, zap.NewNop())
	env.router = gin.New()
	RegisterRoutes(env.router, NewPrintHandler(svc), NewSystemHandler())

	w := env.post(`{"jobId":"job-5","htmlBase64":"PGI+","pageSizeId":1}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"A3 printer not configured"}`, w.Body.String())
}

func TestPrint_SpoolerFailure(t *testing.T) {
	env := newBridge(t)
	env.spooler.submitErr = &spool.Error{Code: "SPOOL_FAILED", Message: "lp exited with status 1"}

	w := env.post(`{"jobId":"job-6","htmlBase64":"PGI+","pageSizeId":2}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"lp exited with status 1"}`, w.Body.String())
}

func TestPrint_UnanticipatedFault(t *testing.T) {
	env := newBridge(t)
	env.renderer.err = assert.AnError

	w := env.post(`{"jobId":"job-7","htmlBase64":"PGI+","pageSizeId":2}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"internal error"}`, w.Body.String())
}

// =============================================================================
// GET /printers
// =============================================================================

func TestPrinters(t *testing.T) {
	env := newBridge(t)

	w := env.get("/printers")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"printers":["Office_A4","Warehouse_A3"]}`, w.Body.String())
}

func TestPrinters_EmptyHost(t *testing.T) {
	env := newBridge(t)
	env.spooler.printerNames = nil

	w := env.get("/printers")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"printers":[]}`, w.Body.String())
}

func TestPrinters_SpoolerError(t *testing.T) {
	env := newBridge(t)
	env.spooler.printersErr = &spool.Error{Code: "SPOOL_FAILED", Message: "lpstat not available"}

	w := env.get("/printers")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"lpstat not available"}`, w.Body.String())
}

// =============================================================================
// Routing
// =============================================================================

func TestUnknownRoute(t *testing.T) {
	env := newBridge(t)

	w := env.get("/no/such/route")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"not found"}`, w.Body.String())
}

func TestWrongMethod(t *testing.T) {
	env := newBridge(t)

	w := env.get("/print")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"not found"}`, w.Body.String())
}
