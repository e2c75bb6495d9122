// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/emailcheck/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every key when reading environment variables,
// e.g. http_port -> EMAILCHECK_HTTP_PORT.
const EnvPrefix = "EMAILCHECK"

// HTTPConfig groups the listener and its timeouts.
//
// The timeouts are skipped by Unmarshal and filled from durationKeys, so
// "30", 30 and "30s" all mean thirty seconds.
type HTTPConfig struct {
	HTTPPort          int           `mapstructure:"http_port"`
	ReadTimeout       time.Duration `mapstructure:"-"`
	ReadHeaderTimeout time.Duration `mapstructure:"-"`
	WriteTimeout      time.Duration `mapstructure:"-"`
	IdleTimeout       time.Duration `mapstructure:"-"`
	ShutdownTimeout   time.Duration `mapstructure:"-"`
}

// CORSConfig groups all CORS behavior and lists.
type CORSConfig struct {
	EnableCORS           bool     `mapstructure:"enable_cors"`
	CORSAllowedOrigins   []string `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods   []string `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders   []string `mapstructure:"cors_allowed_headers"`
	CORSExposedHeaders   []string `mapstructure:"cors_exposed_headers"`
	CORSAllowCredentials bool     `mapstructure:"cors_allow_credentials"`
	CORSMaxAge           int      `mapstructure:"cors_max_age"`
}

// CoreConfig holds the configuration of the validation service.
// The validator's own limits are fixed and deliberately absent here.
type CoreConfig struct {
	// runtime
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error …

	// grouped config
	HTTP HTTPConfig `mapstructure:",squash"`
	CORS CORSConfig `mapstructure:",squash"`

	// request limits
	MaxRequestBodyBytes int64 `mapstructure:"max_request_body_bytes"`
	MaxBatchSize        int   `mapstructure:"max_batch_size"`

	// per-client rate limit on /validate; 0 disables
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	// API keys accepted on /validate; empty leaves it open
	APIKeys []string `mapstructure:"api_keys"`

	// misc
	EnableMetrics bool `mapstructure:"enable_metrics"`
}

// Dump returns a pretty JSON string of the config for debugging.
// API keys are redacted.
func (c CoreConfig) Dump() string {
	if len(c.APIKeys) > 0 {
		c.APIKeys = []string{fmt.Sprintf("[%d redacted]", len(c.APIKeys))}
	}
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

// durationKeys are parsed with parseDurationFlexible after Unmarshal.
var durationKeys = []struct {
	key string
	def time.Duration
	dst func(*CoreConfig) *time.Duration
}{
	{"read_timeout", 15 * time.Second, func(c *CoreConfig) *time.Duration { return &c.HTTP.ReadTimeout }},
	{"read_header_timeout", 10 * time.Second, func(c *CoreConfig) *time.Duration { return &c.HTTP.ReadHeaderTimeout }},
	{"write_timeout", 60 * time.Second, func(c *CoreConfig) *time.Duration { return &c.HTTP.WriteTimeout }},
	{"idle_timeout", 120 * time.Second, func(c *CoreConfig) *time.Duration { return &c.HTTP.IdleTimeout }},
	{"shutdown_timeout", 15 * time.Second, func(c *CoreConfig) *time.Duration { return &c.HTTP.ShutdownTimeout }},
}

// RegisterFlags defines the config flags on fs. Only flags the user sets
// explicitly override env and file values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "info", "Log level")

	fs.Int("http_port", 8080, "HTTP port")
	fs.String("read_timeout", "15s", "HTTP read timeout")
	fs.String("read_header_timeout", "10s", "HTTP read header timeout")
	fs.String("write_timeout", "60s", "HTTP write timeout")
	fs.String("idle_timeout", "120s", "HTTP idle timeout")
	fs.String("shutdown_timeout", "15s", "Graceful shutdown window")

	fs.Int64("max_request_body_bytes", 1<<20, "Max HTTP request body size in bytes (0 = unlimited)")
	fs.Int("max_batch_size", 1000, "Max addresses accepted by one batch request")
	fs.Float64("rate_limit_rps", 0, "Per-client requests per second on /validate (0 = unlimited)")
	fs.Int("rate_limit_burst", 20, "Per-client burst size on /validate")
	fs.String("api_keys", "", `JSON array of accepted API keys, e.g. '["k1","k2"]' (empty = open)`)
	fs.Bool("enable_metrics", true, "Expose Prometheus metrics at /metrics")

	fs.Bool("enable_cors", false, "Enable CORS")
	fs.String("cors_allowed_origins", "", `JSON array of origins, e.g. '["https://a.example","https://b.example"]'`)
	fs.String("cors_allowed_methods", "", `JSON array of methods, e.g. '["GET","POST"]'`)
	fs.String("cors_allowed_headers", "", `JSON array of headers, e.g. '["Accept","Content-Type"]'`)
	fs.String("cors_exposed_headers", "", `JSON array of headers, e.g. '["Link"]'`)
	fs.Bool("cors_allow_credentials", false, "CORS: allow credentials")
	fs.Int("cors_max_age", 0, "CORS: max age seconds (0 disables cache)")
}

// Load merges defaults → config.* file(s) → env vars → explicit flags into one CoreConfig.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
//
// fs must already be parsed and should have been populated by RegisterFlags;
// a nil fs means no flag overrides.
func Load(logger *zap.Logger, fs *pflag.FlagSet) (*CoreConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Optionally load .env (real env still wins over .env)
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded .env file")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	// Optional config.* files (yaml|yml|json|toml)
	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "config." + ext
		if _, err := os.Stat(file); err != nil {
			continue
		}
		b, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			continue
		}
		logger.Info("Loaded config file", zap.String("file", file))
	}

	setDefaults(v)

	if fs != nil {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				_ = v.BindPFlag(f.Name, f)
			}
		})
	}

	return decode(logger, v)
}

// decode turns a populated viper instance into a validated CoreConfig.
func decode(logger *zap.Logger, v *viper.Viper) (*CoreConfig, error) {
	if err := normalizeListKeys(logger, v,
		"cors_allowed_origins",
		"cors_allowed_methods",
		"cors_allowed_headers",
		"cors_exposed_headers",
		"api_keys",
	); err != nil {
		return nil, err
	}

	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode core config: %w", err)
	}

	// Durations bypass mapstructure's hook, which rejects plain seconds.
	for _, d := range durationKeys {
		raw := v.Get(d.key)
		dur, err := parseDurationFlexible(raw, d.def)
		if err != nil {
			logger.Warn("invalid duration; using default",
				zap.String("key", d.key),
				zap.Any("value", raw),
				zap.Duration("default", d.def),
				zap.Error(err))
		}
		*d.dst(&cfg) = dur
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validateCoreConfig(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func allKeys() []string {
	keys := []string{
		"env", "log_level",
		"http_port",
		"max_request_body_bytes", "max_batch_size",
		"rate_limit_rps", "rate_limit_burst",
		"api_keys",
		"enable_metrics",
		"enable_cors",
		"cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers",
		"cors_exposed_headers", "cors_allow_credentials", "cors_max_age",
	}
	for _, d := range durationKeys {
		keys = append(keys, d.key)
	}
	return keys
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")

	v.SetDefault("http_port", 8080)
	for _, d := range durationKeys {
		v.SetDefault(d.key, d.def.String())
	}

	v.SetDefault("max_request_body_bytes", int64(1<<20))
	v.SetDefault("max_batch_size", 1000)
	v.SetDefault("rate_limit_rps", 0.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("api_keys", []string{})
	v.SetDefault("enable_metrics", true)

	// Neutral CORS defaults
	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("cors_allowed_methods", []string{})
	v.SetDefault("cors_allowed_headers", []string{})
	v.SetDefault("cors_exposed_headers", []string{})
	v.SetDefault("cors_allow_credentials", false)
	v.SetDefault("cors_max_age", 0)
}

// normalizeListKeys coerces JSON-string values into []string for the given keys.
func normalizeListKeys(logger *zap.Logger, v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		val := v.Get(key)
		switch t := val.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				v.Set(key, []string{})
				continue
			}
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err != nil {
				return fmt.Errorf("config key %q expects a JSON array string, got %q: %w", key, s, err)
			}
			v.Set(key, arr)
		case []interface{}:
			arr := make([]string, 0, len(t))
			for _, e := range t {
				arr = append(arr, fmt.Sprint(e))
			}
			v.Set(key, arr)
		case []string, nil:
			// already correct or unset
		default:
			logger.Warn("unexpected type for list key; expected JSON array/string",
				zap.String("key", key), zap.Any("value", t))
		}
	}
	return nil
}

func validateCoreConfig(cfg CoreConfig) error {
	var missing []string
	var invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}
	if !logging.IsValidLogLevel(cfg.LogLevel) {
		invalid = append(invalid, "log_level must be one of "+strings.Join(logging.ValidLogLevels, ", "))
	}

	if cfg.HTTP.HTTPPort <= 0 || cfg.HTTP.HTTPPort > 65535 {
		invalid = append(invalid, "http_port must be in 1..65535")
	}

	if cfg.MaxRequestBodyBytes < 0 {
		invalid = append(invalid, "max_request_body_bytes must be >= 0")
	}
	if cfg.MaxBatchSize < 1 {
		invalid = append(invalid, "max_batch_size must be >= 1")
	}
	if cfg.RateLimitRPS < 0 {
		invalid = append(invalid, "rate_limit_rps must be >= 0")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		invalid = append(invalid, "rate_limit_burst must be >= 1 when rate_limit_rps > 0")
	}

	// CORS sanity
	if cfg.CORS.EnableCORS {
		if len(cfg.CORS.CORSAllowedOrigins) == 0 {
			missing = append(missing, "CORS: cors_allowed_origins (JSON array) required when enable_cors=true")
		}
		for _, o := range cfg.CORS.CORSAllowedOrigins {
			if o == "*" && cfg.CORS.CORSAllowCredentials {
				invalid = append(invalid, `CORS: cannot use "*" in cors_allowed_origins when cors_allow_credentials=true`)
				break
			}
		}
		if cfg.CORS.CORSMaxAge < 0 {
			invalid = append(invalid, "CORS: cors_max_age must be >= 0")
		}
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("core configuration errors: %s", strings.Join(parts, " | "))
}
