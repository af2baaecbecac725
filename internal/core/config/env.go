package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: GENSTUB_[SECTION]_[KEY] (e.g., GENSTUB_STUB_LINE_LENGTH).
func ApplyEnvOverrides(cfg *Config) {
	// Stub
	setEnvInt(&cfg.Stub.LineLength, "GENSTUB_STUB_LINE_LENGTH")
	setEnvInt(&cfg.Stub.Indent, "GENSTUB_STUB_INDENT")
	setEnvBool(&cfg.Stub.Permissive, "GENSTUB_STUB_PERMISSIVE")
	setEnvString(&cfg.Stub.Header, "GENSTUB_STUB_HEADER")

	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "GENSTUB_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.OutputDir, "GENSTUB_PATHS_OUTPUT_DIR")
	setEnvString(&cfg.Paths.CacheDir, "GENSTUB_PATHS_CACHE_DIR")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "GENSTUB_WATCH_DEBOUNCE")
	setEnvInt(&cfg.Watch.MaxRegenerationsPerSecond, "GENSTUB_WATCH_MAX_REGENERATIONS_PER_SECOND")

	// Cache
	setEnvBool(&cfg.Cache.Enabled, "GENSTUB_CACHE_ENABLED")
	setEnvString(&cfg.Cache.Path, "GENSTUB_CACHE_PATH")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "GENSTUB_OBSERVABILITY_METRICS_ADDR")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
