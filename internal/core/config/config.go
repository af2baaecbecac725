package config

import (
	"time"
)

const (
	DefaultFile   = "genstub.toml"
	DefaultHeader = "THIS FILE IS AUTOMATICALLY GENERATED, DO NOT EDIT MANUALLY."
)

type Config struct {
	Version       int           `toml:"version" validate:"gte=1,lte=1"`
	Stub          Stub          `toml:"stub"`
	Paths         Paths         `toml:"paths"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Cache         Cache         `toml:"cache"`
	Observability Observability `toml:"observability"`
}

type Stub struct {
	LineLength int    `toml:"line_length" validate:"gte=20,lte=400"`
	Indent     int    `toml:"indent" validate:"gte=1,lte=8"`
	Permissive bool   `toml:"permissive"`
	Header     string `toml:"header"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	// OutputDir is empty when stubs are written next to their sources.
	OutputDir string `toml:"output_dir"`
	CacheDir  string `toml:"cache_dir" validate:"required"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce                  time.Duration `toml:"debounce"`
	MaxRegenerationsPerSecond int           `toml:"max_regenerations_per_second" validate:"gte=1"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path" validate:"required_if=Enabled true"`
}

type Observability struct {
	MetricsAddr string `toml:"metrics_addr" validate:"omitempty,hostname_port"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{Cache: Cache{Enabled: true}}
	applyDefaults(cfg)
	return cfg
}
