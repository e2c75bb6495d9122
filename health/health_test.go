package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func get(t *testing.T, h http.Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, resp
}

func TestHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name       string
		checks     map[string]Check
		wantCode   int
		wantStatus string
	}{
		{"liveness", nil, http.StatusOK, "ok"},
		{"all ok", map[string]Check{"a": ok, "b": nil}, http.StatusOK, "ok"},
		{"one failing", map[string]Check{"a": ok, "b": fail}, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := get(t, Handler(tt.checks, nil))
			if code != tt.wantCode || resp.Status != tt.wantStatus {
				t.Errorf("got %d %q, want %d %q", code, resp.Status, tt.wantCode, tt.wantStatus)
			}
			if tt.wantStatus == "error" && resp.Checks["b"] != "error: down" {
				t.Errorf("checks = %v", resp.Checks)
			}
		})
	}
}

func TestMount(t *testing.T) {
	r := chi.NewRouter()
	Mount(r, nil, nil)
	if code, _ := get(t, r); code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}
