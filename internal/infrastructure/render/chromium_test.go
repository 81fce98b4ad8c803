package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localprint/bridge/internal/domain/printing"
)

func TestNewChromiumRenderer_Defaults(t *testing.T) {
	r := NewChromiumRenderer(nil)

	require.NotNil(t, r.config)
	assert.NotEmpty(t, r.config.TempDir)
	assert.NotNil(t, r.logger)
}

func TestChromiumRenderer_Render_Validation(t *testing.T) {
	r := NewChromiumRenderer(&ChromiumConfig{BinaryPath: "/nonexistent/browser"})

	tests := []struct {
		name     string
		req      *Request
		wantCode string
	}{
		{
			name:     "nil request",
			req:      nil,
			wantCode: ErrCodeInvalidHTML,
		},
		{
			name:     "empty HTML",
			req:      &Request{HTML: []byte(""), Size: printing.PageSizeA4},
			wantCode: ErrCodeInvalidHTML,
		},
		{
			name:     "whitespace only HTML",
			req:      &Request{HTML: []byte("  \n\t "), Size: printing.PageSizeA4},
			wantCode: ErrCodeInvalidHTML,
		},
		{
			name:     "invalid page size",
			req:      &Request{HTML: []byte("<p>x</p>"), Size: printing.PageSize(9)},
			wantCode: ErrCodeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Render(context.Background(), tt.req)
			require.Error(t, err)

			var rerr *Error
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.wantCode, rerr.Code)
		})
	}
}

func TestBuildChromiumArgs(t *testing.T) {
	args := buildChromiumArgs("/tmp/out.pdf", "/tmp/in.html", false)

	assert.Contains(t, args, "--headless")
	assert.Contains(t, args, "--no-pdf-header-footer")
	assert.Contains(t, args, "--print-to-pdf=/tmp/out.pdf")
	assert.NotContains(t, args, "--no-sandbox")
	// The document URL is the final argument
	assert.Equal(t, "file:///tmp/in.html", args[len(args)-1])
}

func TestBuildChromiumArgs_NoSandbox(t *testing.T) {
	args := buildChromiumArgs("/tmp/out.pdf", "/tmp/in.html", true)

	assert.Contains(t, args, "--no-sandbox")
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/tmp/doc.html", "file:///tmp/doc.html"},
		{"relative/doc.html", "file:///relative/doc.html"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, fileURL(tt.path))
	}
}

func TestChromiumRenderer_Close(t *testing.T) {
	r := NewChromiumRenderer(nil)

	assert.NoError(t, r.Close())
}
