// middleware/contenttype.go
package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/dalemusser/emailcheck/httputil"
)

// RequireJSON rejects requests whose Content-Type is not "application/json"
// or a "+json" suffix type with 415 and a JSON error body.
func RequireJSON() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			ct = strings.ToLower(ct)
			if err != nil || (ct != "application/json" && !strings.HasSuffix(ct, "+json")) {
				httputil.JSONError(w, http.StatusUnsupportedMediaType,
					"unsupported_media_type",
					"Content-Type must be application/json",
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
