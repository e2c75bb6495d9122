// metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// reqDuration is a histogram of HTTP request durations in seconds, labeled
// by route pattern, method, and status code.
var reqDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests.",
		// buckets in seconds; validation is fast, so the low end starts at 1ms
		Buckets: []float64{0.001, 0.01, 0.1, 0.3, 1.2, 5},
	},
	[]string{"path", "method", "status"},
)

// validations counts validated candidates by verdict and deciding rule.
// The rule label is bounded by the fixed rule set.
var validations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "email_validations_total",
		Help: "Email addresses validated, by verdict and deciding rule.",
	},
	[]string{"valid", "rule"},
)

// batchSize observes how many candidates each batch request carried.
var batchSize = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name: "email_validation_batch_size",
		Help: "Number of addresses per batch validation request.",
		// 1, 4, 16 ... 4096 covers the default max_batch_size of 1000
		Buckets: prometheus.ExponentialBuckets(1, 4, 7),
	},
)

// RegisterDefault registers the Go runtime and process collectors, the HTTP
// request histogram and the validation collectors. Call once at startup;
// repeated registration is ignored.
//
// Registration failures other than AlreadyRegisteredError are fatal, so a
// misconfigured registry stops the service at startup.
func RegisterDefault(logger *zap.Logger) {
	// Go runtime metrics
	mustRegister(logger, "Go collector", collectors.NewGoCollector())

	// Process metrics
	mustRegister(logger, "process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// HTTP request histogram
	mustRegister(logger, "HTTP request histogram", reqDuration)

	// Validation outcomes and batch sizes
	mustRegister(logger, "validation counter", validations)
	mustRegister(logger, "batch size histogram", batchSize)
}

// mustRegister registers c, tolerating AlreadyRegisteredError. Any other
// failure is fatal (or panics when no logger is provided).
func mustRegister(logger *zap.Logger, name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			// Tests and repeated startup paths register more than once.
			return
		}
		// Anything else is a registry conflict that must be fixed before
		// the service can report metrics.
		if logger != nil {
			logger.Fatal("failed to register "+name, zap.Error(err))
		}
		// No logger: panic so the failure is not silently dropped.
		panic("metrics: failed to register " + name + ": " + err.Error())
	}
}

// ObserveValidation records one validation outcome.
func ObserveValidation(valid bool, rule string) {
	validations.WithLabelValues(strconv.FormatBool(valid), rule).Inc()
}

// ObserveBatch records the size of one batch request.
func ObserveBatch(n int) {
	batchSize.Observe(float64(n))
}

// maxPathLabelLength bounds the path label to keep cardinality in check.
const maxPathLabelLength = 256

// HTTPMetrics is a middleware that records request duration into the
// http_request_duration_seconds histogram. It labels by chi route pattern
// rather than raw path so query strings and unmatched paths stay bounded.
// Place it after the recovery middleware so panics are recorded as 500.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// Malformed requests can carry ProtoMajor 0; treat them as HTTP/1.x.
		protoMajor := r.ProtoMajor
		if protoMajor < 1 {
			protoMajor = 1
		}
		ww := middleware.NewWrapResponseWriter(w, protoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()
		statusCode := ww.Status()
		// Status 0 means the handler never called WriteHeader. net/http sends
		// 200 in that case, so record it as 200. A panic before WriteHeader is
		// turned into a 500 by the recoverer, which is why this middleware
		// must sit after it in the chain.
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		// Clamp to the valid HTTP range so a buggy handler cannot mint new
		// status label values.
		if statusCode < 100 || statusCode > 599 {
			statusCode = http.StatusInternalServerError
		}

		// Label by route pattern. Requests that matched no route share one
		// label instead of leaking arbitrary paths into the registry.
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		// Patterns are short in practice, but keep the bound. Truncated labels
		// end in "..." and are not logged, since that would fire per request.
		if len(path) > maxPathLabelLength {
			path = truncateUTF8(path, maxPathLabelLength-3) + "..."
		}

		reqDuration.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(statusCode),
		).Observe(duration)
	})
}

// Handler returns an http.Handler that exposes the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// truncateUTF8 truncates s to at most maxBytes bytes without splitting a
// multi-byte character.
func truncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	// len(s) > maxBytes, so s[maxBytes] is in range. Step back to the start
	// of the rune that straddles the cut.
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
