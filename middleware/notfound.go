// middleware/notfound.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/emailcheck/httputil"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NotFoundHandler answers unknown routes with a JSON 404.
// Pass it to chi.Router.NotFound.
func NotFoundHandler(logger *zap.Logger) http.HandlerFunc {
	return jsonStatus(logger, http.StatusNotFound, "not_found",
		"The requested resource was not found")
}

// MethodNotAllowedHandler answers known routes called with the wrong method
// with a JSON 405. Pass it to chi.Router.MethodNotAllowed.
func MethodNotAllowedHandler(logger *zap.Logger) http.HandlerFunc {
	return jsonStatus(logger, http.StatusMethodNotAllowed, "method_not_allowed",
		"The requested HTTP method is not allowed for this resource")
}

func jsonStatus(logger *zap.Logger, status int, code, message string) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Info(code,
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_ip", ClientIP(r)),
		)
		httputil.JSONError(w, status, code, message)
	}
}
