// app/handler.go
package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/emailcheck/api"
	"github.com/dalemusser/emailcheck/auth/apikey"
	"github.com/dalemusser/emailcheck/config"
	"github.com/dalemusser/emailcheck/health"
	"github.com/dalemusser/emailcheck/metrics"
	"github.com/dalemusser/emailcheck/middleware"
	"github.com/dalemusser/emailcheck/router"
	"github.com/dalemusser/emailcheck/validate"
	"github.com/dalemusser/emailcheck/version"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler wires the validation service: the standard router, the
// validation API with every built-in locale behind the rate limiter and API
// key check, plus /health, /version and (when enabled) /metrics.
func BuildHandler(core *config.CoreConfig, logger *zap.Logger) (http.Handler, error) {
	if core == nil {
		return nil, errors.New("app: core config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	v := validate.NewEmailValidator()
	messages := validate.NewMessageProvider()
	messages.RegisterBuiltinLocales()

	r := router.New(core, logger)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(core.RateLimitRPS, core.RateLimitBurst))
		r.Use(apikey.Require(core.APIKeys, logger))
		api.New(v, messages, core.MaxBatchSize, logger).Mount(r)
	})
	health.Mount(r, map[string]health.Check{
		"validator": validatorCheck(v),
	}, logger)
	version.Mount(r)
	if core.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	logger.Info("routes mounted",
		zap.Int("max_batch_size", core.MaxBatchSize),
		zap.Strings("locales", messages.Locales()),
		zap.Bool("metrics", core.EnableMetrics))
	return r, nil
}

// validatorCheck verifies the validator still accepts a known-good address
// and rejects a known-bad one.
func validatorCheck(v *validate.EmailValidator) health.Check {
	return func(ctx context.Context) error {
		if ok, msg := v.ValidateEmail("user@example.com"); !ok {
			return errors.New("known-good address rejected: " + msg)
		}
		if ok, _ := v.ValidateEmail("invalid-email"); ok {
			return errors.New("known-bad address accepted")
		}
		return nil
	}
}
