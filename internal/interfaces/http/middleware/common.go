// Package middleware provides the HTTP middleware chain of the print bridge.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/localprint/bridge/internal/infrastructure/config"
)

// The bridge is called from browser pages served by arbitrary web apps, so
// cross-origin access is wide open. Locality of the caller is what gates
// access, not the page origin.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
	corsMaxAge       = "86400"
)

// CORS stamps the fixed cross-origin headers on every response, including
// errors produced further down the chain. While token auth is enabled the
// token header joins Allow-Headers so browsers may send it. It never
// short-circuits; preflight termination is Preflight's job so that the
// local-origin check still runs for OPTIONS requests.
func CORS(store *config.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowHeaders := corsAllowHeaders
		if store != nil && store.Current().Auth.Enabled() {
			allowHeaders += ", " + HeaderPrintToken
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", corsAllowOrigin)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Max-Age", corsMaxAge)
		c.Next()
	}
}

// Preflight answers OPTIONS requests with an empty 204 on any path. It must
// sit after the local-origin check, so a remote preflight is refused like any
// other remote request, and before token enforcement, so browsers can
// preflight without being able to attach custom headers yet.
func Preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestID adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a timestamp-based ID if crypto/rand fails
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(bytes)
}

// Secure adds security headers to responses. The bridge serves JSON to
// local callers only, so the heavyweight browser policies (CSP, HSTS) are
// left out.
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		// Prevent embedding in frames
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
