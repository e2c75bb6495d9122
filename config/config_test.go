package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.HTTP.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.HTTP.HTTPPort)
	}
	if cfg.HTTP.ShutdownTimeout != 15*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 15s", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.HTTP.IdleTimeout != 120*time.Second {
		t.Errorf("IdleTimeout = %s, want 2m", cfg.HTTP.IdleTimeout)
	}
	if cfg.MaxBatchSize != 1000 {
		t.Errorf("MaxBatchSize = %d, want 1000", cfg.MaxBatchSize)
	}
	if !cfg.EnableMetrics {
		t.Error("EnableMetrics should default to true")
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != 20 {
		t.Errorf("rate limit = %v/%d, want 0/20", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.CORS.EnableCORS {
		t.Error("EnableCORS should default to false")
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("EMAILCHECK_HTTP_PORT", "9090")
	t.Setenv("EMAILCHECK_LOG_LEVEL", "DEBUG")
	t.Setenv("EMAILCHECK_SHUTDOWN_TIMEOUT", "30")
	t.Setenv("EMAILCHECK_MAX_BATCH_SIZE", "50")

	cfg, err := Load(nil, newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.HTTP.HTTPPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.HTTP.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 30s", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.MaxBatchSize != 50 {
		t.Errorf("MaxBatchSize = %d, want 50", cfg.MaxBatchSize)
	}
}

func TestLoad_ExplicitFlagsWin(t *testing.T) {
	t.Setenv("EMAILCHECK_HTTP_PORT", "9090")

	cfg, err := Load(nil, newFlags(t, "--http_port=7070", "--write_timeout=5s"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.HTTPPort != 7070 {
		t.Errorf("HTTPPort = %d, want 7070 (flag beats env)", cfg.HTTP.HTTPPort)
	}
	if cfg.HTTP.WriteTimeout != 5*time.Second {
		t.Errorf("WriteTimeout = %s, want 5s", cfg.HTTP.WriteTimeout)
	}
}

func TestLoad_CORSListsFromJSON(t *testing.T) {
	cfg, err := Load(nil, newFlags(t,
		"--enable_cors",
		`--cors_allowed_origins=["https://a.example","https://b.example"]`,
		`--cors_allowed_methods=["GET","POST"]`,
	))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.CORS.CORSAllowedOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", got)
	}
	if got := cfg.CORS.CORSAllowedMethods; len(got) != 2 || got[0] != "GET" {
		t.Errorf("CORSAllowedMethods = %v", got)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("EMAILCHECK_READ_TIMEOUT", "soon")

	core, logs := observer.New(zapcore.WarnLevel)
	cfg, err := Load(zap.New(core), newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %s, want default 15s", cfg.HTTP.ReadTimeout)
	}
	if n := logs.FilterMessage("invalid duration; using default").Len(); n != 1 {
		t.Errorf("logged %d duration warnings, want 1", n)
	}
}

func TestLoad_NumericSecondDurations(t *testing.T) {
	tests := []struct {
		name string
		env  string
		args []string
		file string
		get  func(*CoreConfig) time.Duration
		want time.Duration
	}{
		{
			name: "env",
			env:  "30",
			get:  func(c *CoreConfig) time.Duration { return c.HTTP.ShutdownTimeout },
			want: 30 * time.Second,
		},
		{
			name: "flag",
			args: []string{"--read_timeout=30"},
			get:  func(c *CoreConfig) time.Duration { return c.HTTP.ReadTimeout },
			want: 30 * time.Second,
		},
		{
			name: "config file number",
			file: "write_timeout: 45\n",
			get:  func(c *CoreConfig) time.Duration { return c.HTTP.WriteTimeout },
			want: 45 * time.Second,
		},
		{
			name: "config file numeric string",
			file: "idle_timeout: \"2.5\"\n",
			get:  func(c *CoreConfig) time.Duration { return c.HTTP.IdleTimeout },
			want: 2500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			if tt.env != "" {
				t.Setenv("EMAILCHECK_SHUTDOWN_TIMEOUT", tt.env)
			}
			if tt.file != "" {
				if err := os.WriteFile("config.yaml", []byte(tt.file), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			cfg, err := Load(nil, newFlags(t, tt.args...))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := tt.get(cfg); got != tt.want {
				t.Errorf("duration = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad port", []string{"--http_port=70000"}, "http_port must be in 1..65535"},
		{"bad env", []string{"--env=staging"}, `env must be "dev" or "prod"`},
		{"bad level", []string{"--log_level=loud"}, "log_level must be one of"},
		{"bad batch", []string{"--max_batch_size=0"}, "max_batch_size must be >= 1"},
		{"negative rate", []string{"--rate_limit_rps=-1"}, "rate_limit_rps must be >= 0"},
		{"zero burst", []string{"--rate_limit_rps=5", "--rate_limit_burst=0"}, "rate_limit_burst must be >= 1"},
		{"cors without origins", []string{"--enable_cors", `--cors_allowed_methods=["GET"]`}, "cors_allowed_origins"},
		{"cors wildcard with credentials", []string{
			"--enable_cors", "--cors_allow_credentials",
			`--cors_allowed_origins=["*"]`, `--cors_allowed_methods=["GET"]`,
		}, `cannot use "*"`},
		{"malformed list", []string{"--enable_cors", "--cors_allowed_origins=https://a.example"}, "expects a JSON array string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(nil, newFlags(t, tt.args...))
			if err == nil {
				t.Fatalf("Load(%v) succeeded, want error containing %q", tt.args, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load(%v) error = %q, want it to contain %q", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestParseDurationFlexible(t *testing.T) {
	def := 7 * time.Second
	tests := []struct {
		name    string
		raw     any
		want    time.Duration
		wantErr bool
	}{
		{"duration string", "90s", 90 * time.Second, false},
		{"compound", "1m30s", 90 * time.Second, false},
		{"plain seconds string", "120", 120 * time.Second, false},
		{"int seconds", 5, 5 * time.Second, false},
		{"int64 seconds", int64(3), 3 * time.Second, false},
		{"float seconds", 1.5, 1500 * time.Millisecond, false},
		{"time.Duration", 2 * time.Minute, 2 * time.Minute, false},
		{"empty", "  ", def, false},
		{"nil", nil, def, false},
		{"bool ignored", true, def, false},
		{"garbage", "soon", def, true},
		{"zero", "0s", def, true},
		{"negative int", -1, def, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurationFlexible(tt.raw, def)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseDurationFlexible(%v) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDurationFlexible(%v) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDump(t *testing.T) {
	cfg, err := Load(nil, newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out := cfg.Dump()
	if !strings.Contains(out, `"HTTPPort": 8080`) {
		t.Errorf("Dump() missing port:\n%s", out)
	}
}

func TestLoad_APIKeysRedactedInDump(t *testing.T) {
	cfg, err := Load(nil, newFlags(t, `--api_keys=["s3cret","other"]`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.APIKeys) != 2 || cfg.APIKeys[0] != "s3cret" {
		t.Fatalf("APIKeys = %v", cfg.APIKeys)
	}
	out := cfg.Dump()
	if strings.Contains(out, "s3cret") {
		t.Errorf("Dump() leaks an API key:\n%s", out)
	}
	if !strings.Contains(out, "[2 redacted]") {
		t.Errorf("Dump() missing redaction marker:\n%s", out)
	}
	if cfg.APIKeys[0] != "s3cret" {
		t.Error("Dump() modified the config")
	}
}
