package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the variable's value, or the default when unset.
// A set-but-empty variable counts as unset.
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetIntEnv parses the variable as an integer. Unset or unparseable
// values fall back to the default.
func GetIntEnv(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetDurationEnv parses the variable in time.ParseDuration syntax
// ("30s", "5m"). Unset or unparseable values fall back to the default.
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

// GetSecretFile reads a secret from the given path, trimming the
// trailing newline most secret mounts append. Empty or unreadable
// paths yield an empty string so env fallbacks can take over.
func GetSecretFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
