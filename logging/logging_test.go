package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane.doe@example.com", "j***@example.com"},
		{"  x@example.com ", "x***@example.com"},
		{"élise@example.fr", "é***@example.fr"},
		{"@example.com", "@example.com"},
		{"no-at-sign", "[10 bytes]"},
		{"a@b@c", "[5 bytes]"},
		{"", "[0 bytes]"},
	}
	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidLogLevel(t *testing.T) {
	for _, l := range []string{"debug", "INFO", "Warn", "error", "dpanic", "panic", "fatal"} {
		if !IsValidLogLevel(l) {
			t.Errorf("IsValidLogLevel(%q) = false, want true", l)
		}
	}
	for _, l := range []string{"", "trace", "verbose"} {
		if IsValidLogLevel(l) {
			t.Errorf("IsValidLogLevel(%q) = true, want false", l)
		}
	}
}

func TestBuildLogger(t *testing.T) {
	logger, err := BuildLogger("warn", "prod")
	if err != nil {
		t.Fatalf("BuildLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}

	// Bad level falls back to info.
	logger, err = BuildLogger("loud", "dev")
	if err != nil {
		t.Fatalf("BuildLogger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("invalid level should default to info")
	}
}

func TestValidationFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("validated", ValidationFields("jane@example.com", false, "pattern")...)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["email"] != "j***@example.com" || ctx["valid"] != false || ctx["rule"] != "pattern" {
		t.Errorf("unexpected fields: %v", ctx)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/validate", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d info entries, want 1 (health is debug)", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["path"] != "/validate" {
		t.Errorf("path = %v, want /validate", ctx["path"])
	}
	if ctx["status"] != int64(http.StatusTeapot) {
		t.Errorf("status = %v, want %d", ctx["status"], http.StatusTeapot)
	}
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recoverer(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/validate", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal_error") {
		t.Errorf("body = %q, want JSON error", rec.Body.String())
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic was not logged")
	}
}
