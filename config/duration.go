// config/duration.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDurationFlexible accepts "90s"/"2m" strings, plain seconds as a number
// or numeric string, or a time.Duration. Empty and unknown types yield def
// without an error; unparseable or non-positive values yield def and an error.
func parseDurationFlexible(raw any, def time.Duration) (time.Duration, error) {
	switch t := raw.(type) {
	case time.Duration:
		return positive(t, def)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		if d, err := time.ParseDuration(s); err == nil {
			return positive(d, def)
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return positive(seconds(n), def)
		}
		return def, fmt.Errorf("cannot parse duration %q", s)
	case int:
		return positive(seconds(float64(t)), def)
	case int64:
		return positive(seconds(float64(t)), def)
	case float64:
		return positive(seconds(t), def)
	default:
		return def, nil
	}
}

func seconds(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}

func positive(d, def time.Duration) (time.Duration, error) {
	if d <= 0 {
		return def, fmt.Errorf("duration must be >0, got %s", d)
	}
	return d, nil
}
