package apikey

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequire(t *testing.T) {
	h := Require([]string{"alpha", " beta "}, nil)(okHandler)

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"bearer", "Authorization", "Bearer alpha", http.StatusOK},
		{"bearer lowercase", "Authorization", "bearer beta", http.StatusOK},
		{"x-api-key", "X-API-Key", "beta", http.StatusOK},
		{"wrong key", "X-API-Key", "gamma", http.StatusUnauthorized},
		{"prefix of key", "X-API-Key", "alp", http.StatusUnauthorized},
		{"empty bearer", "Authorization", "Bearer ", http.StatusUnauthorized},
		{"missing", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/validate", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestRequire_NoKeysIsIdentity(t *testing.T) {
	for _, keys := range [][]string{nil, {"", "  "}} {
		rec := httptest.NewRecorder()
		Require(keys, nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("keys %q: status = %d, want 200", keys, rec.Code)
		}
	}
}
