package middleware

import (
	"crypto/subtle"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/localprint/bridge/internal/domain/shared"
	"github.com/localprint/bridge/internal/infrastructure/config"
	"github.com/localprint/bridge/internal/interfaces/http/dto"
)

// HeaderPrintToken carries the shared token on print API requests.
const HeaderPrintToken = "X-Print-Token"

// TokenAuth enforces the shared-token check when the configuration carries
// one. With no token configured the middleware passes everything through,
// which is the default: locality of the caller is the primary access
// control and the token is an opt-in second factor for shared machines.
//
// The configuration is read through the store on every request so a token
// added or rotated at runtime takes effect without a restart. Place this
// after Preflight: OPTIONS requests cannot carry custom headers, so
// preflights must complete before the token is demanded.
func TokenAuth(store *config.Store) gin.HandlerFunc {
	var memo tokenMemo
	return func(c *gin.Context) {
		auth := store.Current().Auth
		if !auth.Enabled() {
			c.Next()
			return
		}

		if !tokenMatches(&auth, &memo, c.GetHeader(HeaderPrintToken)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(shared.ErrUnauthorized.Message))
			return
		}
		c.Next()
	}
}

// tokenMemo remembers the last presentation that verified against a hash.
// bcrypt is deliberately slow, and the same client re-sends the same token
// on every request, so repeats short-circuit to a constant-time compare.
// A rotated hash misses the memo and takes the bcrypt path again.
type tokenMemo struct {
	mu    sync.Mutex
	hash  string
	token string
}

func (m *tokenMemo) matches(hash, presented string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hash == hash && subtle.ConstantTimeCompare([]byte(m.token), []byte(presented)) == 1
}

func (m *tokenMemo) remember(hash, presented string) {
	m.mu.Lock()
	m.hash = hash
	m.token = presented
	m.mu.Unlock()
}

func tokenMatches(auth *config.AuthConfig, memo *tokenMemo, presented string) bool {
	if presented == "" {
		return false
	}
	if auth.TokenHash != "" {
		if memo.matches(auth.TokenHash, presented) {
			return true
		}
		if bcrypt.CompareHashAndPassword([]byte(auth.TokenHash), []byte(presented)) != nil {
			return false
		}
		memo.remember(auth.TokenHash, presented)
		return true
	}
	return subtle.ConstantTimeCompare([]byte(auth.Token), []byte(presented)) == 1
}
