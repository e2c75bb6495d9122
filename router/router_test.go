package router

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/emailcheck/config"
	"go.uber.org/zap"
)

func TestNew_Stack(t *testing.T) {
	r := New(&config.CoreConfig{MaxRequestBodyBytes: 8}, zap.NewNop())
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		if _, err := r.Body.Read(buf); err != nil && !errors.Is(err, io.EOF) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"not found", httptest.NewRequest(http.MethodGet, "/missing", nil), http.StatusNotFound},
		{"method not allowed", httptest.NewRequest(http.MethodPut, "/panic", nil), http.StatusMethodNotAllowed},
		{"panic recovered", httptest.NewRequest(http.MethodGet, "/panic", nil), http.StatusInternalServerError},
		{"body limit", httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 32))), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, tt.req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("API headers not applied")
			}
		})
	}
}
