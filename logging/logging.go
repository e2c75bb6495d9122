// logging/logging.go
package logging

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BootstrapLogger returns a development-friendly logger for early startup.
// It's safe to use before config is loaded and logs to stderr.
func BootstrapLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	logger, err := cfg.Build()
	if err != nil {
		// No logger at all is worse than a silent one; never return nil.
		return zap.NewNop()
	}
	return logger
}

// ValidLogLevels lists all valid zap log levels for validation.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// IsValidLogLevel checks if the given level string is a valid zap log level.
// Comparison is case-insensitive.
func IsValidLogLevel(level string) bool {
	level = strings.ToLower(level)
	for _, valid := range ValidLogLevels {
		if level == valid {
			return true
		}
	}
	return false
}

// BuildLogger constructs the final logger based on log level and env.
// If env is "prod", it uses a JSON encoder; otherwise, it uses the development config.
//
// Levels are matched case-insensitively against ValidLogLevels. An invalid
// level defaults to "info" with a warning on stderr, so the misconfiguration
// shows up even though the logger itself cannot report it yet.
func BuildLogger(level, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	// ISO-8601 timestamps in both encoders.
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Honor the requested level; warn and fall back to info on bad input.
	if err := cfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		_, _ = os.Stderr.WriteString("WARNING: invalid log level \"" + level +
			"\"; valid levels are: " + strings.Join(ValidLogLevels, ", ") + ". Defaulting to \"info\".\n")
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Logs go to stderr. stdout is reserved for CLI results, so
	// `emailcheck check -v -f json > out.json` stays machine-readable.
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// MustBuildLogger is a convenience for main() that wants to exit on logger build failure.
func MustBuildLogger(level, env string) *zap.Logger {
	logger, err := BuildLogger(level, env)
	if err != nil {
		// Last resort: there is no logger to report through.
		_, _ = os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	return logger
}

// MaskEmail hides most of the local part of an address so logs can
// correlate requests without storing full addresses, e.g.
// "jane.doe@example.com" -> "j***@example.com". Input without exactly one
// '@' is reduced to its length.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		// No reliable local/domain split; leak nothing but the size.
		return "[" + strconv.Itoa(len(email)) + " bytes]"
	}
	if local == "" {
		return "@" + domain
	}
	// Keep the first rune, not byte, so multi-byte local parts stay valid UTF-8.
	r := []rune(local)
	return string(r[0]) + "***@" + domain
}

// ValidationFields returns the standard fields logged for one validation.
func ValidationFields(email string, valid bool, rule string) []zap.Field {
	return []zap.Field{
		zap.String("email", MaskEmail(email)),
		zap.Bool("valid", valid),
		zap.String("rule", rule),
	}
}
