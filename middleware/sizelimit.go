// middleware/sizelimit.go
package middleware

import (
	"net/http"
)

// LimitBodySize returns a middleware that caps request bodies at maxBytes.
// maxBytes <= 0 disables the limit and leaves the body unwrapped.
//
// Apply it early in the chain so a large batch request is cut off before
// the JSON decoder buffers it. Reads past the cap fail with
// *http.MaxBytesError, which httputil.BindJSON maps to ErrBodyTooLarge.
func LimitBodySize(maxBytes int64) func(next http.Handler) http.Handler {
	if maxBytes <= 0 {
		// No limit: identity middleware.
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
