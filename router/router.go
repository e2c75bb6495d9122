// router/router.go
package router

import (
	"github.com/dalemusser/emailcheck/config"
	"github.com/dalemusser/emailcheck/logging"
	"github.com/dalemusser/emailcheck/metrics"
	"github.com/dalemusser/emailcheck/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New creates a chi.Router pre-wired with the standard middleware stack:
// request ID, real IP, panic recovery, API response headers, CORS (when
// enabled), body size limit, request metrics (when enabled) and access
// logging, plus JSON NotFound / MethodNotAllowed handlers.
// Routes are mounted by the caller.
func New(coreCfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger))
	r.Use(middleware.APIHeaders())
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.LimitBodySize(coreCfg.MaxRequestBodyBytes))
	if coreCfg.EnableMetrics {
		r.Use(metrics.HTTPMetrics)
	}
	r.Use(logging.RequestLogger(logger))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}
