package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/localprint/bridge/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func assertCORSHeaders(t *testing.T, h http.Header) {
	t.Helper()
	assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", h.Get("Access-Control-Max-Age"))
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS(nil))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("sets fixed headers on success", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assertCORSHeaders(t, w.Header())
	})

	t.Run("sets fixed headers on unmatched route", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/no/such/route", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assertCORSHeaders(t, w.Header())
	})

	t.Run("does not answer preflight itself", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/test", nil))

		// No Preflight middleware in this router, so OPTIONS falls through
		// to routing. Headers are still stamped.
		assert.Equal(t, http.StatusNotFound, w.Code)
		assertCORSHeaders(t, w.Header())
	})
}

func TestCORS_TokenHeaderFollowsAuthConfig(t *testing.T) {
	store := config.NewStore(&config.Config{})
	router := gin.New()
	router.Use(CORS(store))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))

	// Enabling token auth at runtime advertises the header on the next
	// response.
	store.Replace(&config.Config{Auth: config.AuthConfig{Token: "open-sesame"}})

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, "Content-Type, X-Print-Token", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS(nil), Preflight())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("answers OPTIONS with empty 204 on any path", func(t *testing.T) {
		for _, path := range []string{"/test", "/print", "/no/such/route"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("OPTIONS", path, nil))

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Empty(t, w.Body.String())
			assertCORSHeaders(t, w.Header())
		}
	})

	t.Run("passes other methods through", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})
}

func TestRequestID(t *testing.T) {
	var captured string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		captured = c.GetString("request_id")
		c.String(http.StatusOK, "ok")
	})

	t.Run("generates an ID when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		id := w.Header().Get("X-Request-ID")
		assert.Len(t, id, 32)
		assert.Equal(t, id, captured)
	})

	t.Run("keeps a caller-provided ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "caller-id-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "caller-id-1", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "caller-id-1", captured)
	})
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
}
