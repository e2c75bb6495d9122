// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/emailcheck/config"
	"github.com/go-chi/cors"
)

// CORS defaults for the validation API, used when the corresponding list is
// not configured.
var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	defaultCORSHeaders = []string{"Accept", "Accept-Language", "Content-Type"}
	defaultCORSExposed = []string{"Content-Language", "Retry-After"}
)

// CORSFromConfig returns a middleware that applies the CORS section of
// coreCfg, or an identity middleware when CORS is disabled.
func CORSFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.CORS.EnableCORS {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	c := coreCfg.CORS
	return cors.Handler(cors.Options{
		AllowedOrigins:   c.CORSAllowedOrigins,
		AllowedMethods:   orDefault(c.CORSAllowedMethods, defaultCORSMethods),
		AllowedHeaders:   orDefault(c.CORSAllowedHeaders, defaultCORSHeaders),
		ExposedHeaders:   orDefault(c.CORSExposedHeaders, defaultCORSExposed),
		AllowCredentials: c.CORSAllowCredentials,
		MaxAge:           c.CORSMaxAge,
	})
}

func orDefault(list, def []string) []string {
	if len(list) == 0 {
		return def
	}
	return list
}
