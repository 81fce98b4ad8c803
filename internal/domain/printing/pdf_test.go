package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikePDF(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected bool
	}{
		{"pdf header", []byte("%PDF-1.7\n...."), true},
		{"html payload", []byte("<html><body>hi</body></html>"), false},
		{"empty", nil, false},
		{"header mid stream", []byte("garbage%PDF-1.4"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LooksLikePDF(tt.data))
		})
	}
}

func TestEstimatePageCount(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected int
	}{
		{
			name:     "three pages",
			data:     []byte("%PDF-1.4 /Type /Pages /Type /Page /Type /Page /Type /Page"),
			expected: 3,
		},
		{
			name:     "single page",
			data:     []byte("%PDF-1.4 /Type /Pages /Type /Page"),
			expected: 1,
		},
		{
			name:     "no markers still counts one for a pdf",
			data:     []byte("%PDF-1.4 stream data"),
			expected: 1,
		},
		{
			name:     "not a pdf",
			data:     []byte("plain text"),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EstimatePageCount(tt.data))
		})
	}
}
