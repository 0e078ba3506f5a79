package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding env vars are set. It runs after the config file is applied and
// before explicit flags, giving flags > env > file.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := os.Getenv("GOEXTRACT_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv("GOEXTRACT_FORMAT")); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if d, ok := envDuration("GOEXTRACT_TIMEOUT"); ok {
		cfg.Timeout = d
	}
	if n, ok := envInt("GOEXTRACT_MAX_BODY_BYTES"); ok {
		cfg.MaxBodyBytes = int64(n)
	}
	if n, ok := envInt("GOEXTRACT_CONCURRENCY"); ok {
		cfg.Concurrency = n
	}
	if b, ok := envBool("VERBOSE"); ok {
		cfg.Verbose = b
	}
}

// envDuration accepts Go durations ("1500ms", "10s") or a bare number of seconds.
func envDuration(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}

func envInt(key string) (int, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
