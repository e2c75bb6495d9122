// auth/apikey/apikey.go
package apikey

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/emailcheck/httputil"
	"go.uber.org/zap"
)

// Realm is sent in the WWW-Authenticate header of 401 responses.
const Realm = "emailcheck"

// Require returns a middleware that admits requests carrying one of keys.
// Blank keys are ignored; with no usable keys the middleware is an identity,
// so it can be applied unconditionally.
//
// Key lookup order:
//  1. Authorization: Bearer <token>
//  2. X-API-Key header
func Require(keys []string, logger *zap.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	var allowed [][]byte
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			allowed = append(allowed, []byte(k))
		}
	}
	if len(allowed) == 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := fromRequest(r)
			if !ok || !matches(allowed, key) {
				logger.Warn("API key unauthorized",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("remote_ip", r.RemoteAddr),
					zap.Bool("key_present", ok),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+Realm+`"`)
				httputil.JSONError(w, http.StatusUnauthorized, "unauthorized", "a valid API key is required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// matches compares key against every allowed key in constant time.
func matches(allowed [][]byte, key string) bool {
	k := []byte(key)
	found := 0
	for _, a := range allowed {
		found |= subtle.ConstantTimeCompare(a, k)
	}
	return found == 1
}

func fromRequest(r *http.Request) (string, bool) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		if token := strings.TrimSpace(auth[len("bearer "):]); token != "" {
			return token, true
		}
	}
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key, true
	}
	return "", false
}
