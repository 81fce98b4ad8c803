package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/localprint/bridge/internal/infrastructure/config"
)

func newTokenRouter(auth config.AuthConfig) *gin.Engine {
	store := config.NewStore(&config.Config{Auth: auth})
	router := gin.New()
	router.Use(Preflight(), TokenAuth(store))
	router.GET("/printers", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func doTokenRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/printers", nil)
	if token != "" {
		req.Header.Set(HeaderPrintToken, token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTokenAuth_Disabled(t *testing.T) {
	router := newTokenRouter(config.AuthConfig{})

	w := doTokenRequest(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenAuth_PlainToken(t *testing.T) {
	router := newTokenRouter(config.AuthConfig{Token: "open-sesame"})

	t.Run("matching token passes", func(t *testing.T) {
		w := doTokenRequest(router, "open-sesame")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong token refused", func(t *testing.T) {
		w := doTokenRequest(router, "guess")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"ok":false,"message":"unauthorized"}`, w.Body.String())
	})

	t.Run("missing token refused", func(t *testing.T) {
		w := doTokenRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTokenAuth_HashedToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	router := newTokenRouter(config.AuthConfig{TokenHash: string(hash)})

	t.Run("matching token passes", func(t *testing.T) {
		w := doTokenRequest(router, "open-sesame")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("repeat presentation passes via the memo", func(t *testing.T) {
		w := doTokenRequest(router, "open-sesame")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong token refused", func(t *testing.T) {
		w := doTokenRequest(router, "guess")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTokenMemo(t *testing.T) {
	auth := config.AuthConfig{TokenHash: "$2a$04$invalid-hash-no-bcrypt-form"}
	var memo tokenMemo

	// The hash is unparseable, so only the memo path can accept.
	assert.False(t, tokenMatches(&auth, &memo, "open-sesame"))

	memo.remember(auth.TokenHash, "open-sesame")
	assert.True(t, tokenMatches(&auth, &memo, "open-sesame"))
	assert.False(t, tokenMatches(&auth, &memo, "guess"))

	// A rotated hash invalidates the memo.
	auth.TokenHash = "$2a$04$rotated-hash-also-invalid00"
	assert.False(t, tokenMatches(&auth, &memo, "open-sesame"))
}

func TestTokenAuth_PreflightExempt(t *testing.T) {
	router := newTokenRouter(config.AuthConfig{Token: "open-sesame"})

	// OPTIONS carries no custom headers; Preflight answers before the
	// token check runs.
	req := httptest.NewRequest("OPTIONS", "/printers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTokenAuth_SeesConfigReloads(t *testing.T) {
	store := config.NewStore(&config.Config{})
	router := gin.New()
	router.Use(TokenAuth(store))
	router.GET("/printers", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/printers", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	store.Replace(&config.Config{Auth: config.AuthConfig{Token: "rotated"}})

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/printers", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
