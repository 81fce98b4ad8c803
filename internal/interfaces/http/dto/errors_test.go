package dto_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localprint/bridge/internal/interfaces/http/dto"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"validation", dto.ErrCodeValidation, http.StatusBadRequest},
		{"unauthorized", dto.ErrCodeUnauthorized, http.StatusUnauthorized},
		{"not found", dto.ErrCodeNotFound, http.StatusNotFound},
		{"internal", dto.ErrCodeInternal, http.StatusInternalServerError},
		{"decode failed", dto.ErrCodeDecodeFailed, http.StatusInternalServerError},
		{"fetch failed", dto.ErrCodeFetchFailed, http.StatusInternalServerError},
		{"renderer not found", dto.ErrCodeRendererNotFound, http.StatusInternalServerError},
		{"render timeout", dto.ErrCodeRenderTimeout, http.StatusInternalServerError},
		{"printer not configured", dto.ErrCodePrinterNotConfigured, http.StatusInternalServerError},
		{"printer not found", dto.ErrCodePrinterNotFound, http.StatusInternalServerError},
		{"paper unsupported", dto.ErrCodePaperUnsupported, http.StatusInternalServerError},
		{"spool failed", dto.ErrCodeSpoolFailed, http.StatusInternalServerError},
		{"unknown code", "SOMETHING_ELSE", http.StatusInternalServerError},
		{"empty code", "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dto.GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorCodeHTTPStatus_OnlyRequestErrorsBelow500(t *testing.T) {
	// Operational pipeline failures must surface as server errors; only
	// the three request-level codes may map lower.
	allowed := map[string]bool{
		dto.ErrCodeValidation:   true,
		dto.ErrCodeUnauthorized: true,
		dto.ErrCodeNotFound:     true,
	}

	for code, status := range dto.ErrorCodeHTTPStatus {
		if status < http.StatusInternalServerError {
			assert.True(t, allowed[code], "code %s unexpectedly maps to %d", code, status)
		}
	}
}
