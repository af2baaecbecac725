package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// LoadOrDefault behaves like Load but falls back to the defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		return Default(), nil
	}
	return cfg, err
}

func Parse(data string) (*Config, error) {
	cfg := Config{Cache: Cache{Enabled: true}}
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	normalizeExclude(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if cfg.Stub.LineLength == 0 {
		cfg.Stub.LineLength = 79
	}
	if cfg.Stub.Indent == 0 {
		cfg.Stub.Indent = 4
	}
	if strings.TrimSpace(cfg.Stub.Header) == "" {
		cfg.Stub.Header = DefaultHeader
	}

	if strings.TrimSpace(cfg.Paths.CacheDir) == "" {
		cfg.Paths.CacheDir = ".genstub"
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git", "__pycache__", ".venv", "venv", ".tox"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRegenerationsPerSecond == 0 {
		cfg.Watch.MaxRegenerationsPerSecond = 20
	}

	if strings.TrimSpace(cfg.Cache.Path) == "" {
		cfg.Cache.Path = "stubs.db"
	}
}

func normalizeExclude(cfg *Config) {
	cfg.Exclude.Dirs = trimAll(cfg.Exclude.Dirs)
	cfg.Exclude.Files = trimAll(cfg.Exclude.Files)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Describe returns a one-line summary used in debug logs.
func (c *Config) Describe() string {
	return fmt.Sprintf("line_length=%d indent=%d permissive=%t output_dir=%q cache=%t",
		c.Stub.LineLength, c.Stub.Indent, c.Stub.Permissive, c.Paths.OutputDir, c.Cache.Enabled)
}
