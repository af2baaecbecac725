package app

import (
	"fmt"
	"log/slog"
	"sync"

	"genstub/internal/core/config"
	"genstub/internal/core/ports"
	"genstub/internal/core/watcher"
	"genstub/internal/data/cache"
	"genstub/internal/engine/stub"
)

type App struct {
	cwd string

	cfgMu  sync.RWMutex
	config *config.Config
	paths  config.ResolvedPaths
	filter *watcher.Filter

	cache ports.StubCache

	// Runs never overlap; watch batches queue behind a full run.
	runMu sync.Mutex

	lastMu  sync.RWMutex
	lastRun *ports.RunSummary
}

// New builds an App for cfg. Relative inputs and outputs are resolved
// against cwd. A cache that cannot be opened is logged and left out.
func New(cfg *config.Config, cwd string) (*App, error) {
	a := &App{cwd: cwd}
	if err := a.UpdateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		store, err := cache.Open(a.paths.CachePath)
		if err != nil {
			slog.Warn("stub cache unavailable, continuing without it", "path", a.paths.CachePath, "error", err)
		} else {
			a.cache = store
		}
	}
	return a, nil
}

// UpdateConfig swaps in a new configuration. Runs already in progress keep
// the options they started with.
func (a *App) UpdateConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	paths, err := config.ResolvePaths(cfg, a.cwd)
	if err != nil {
		return err
	}
	filter, err := watcher.NewFilter(cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return fmt.Errorf("compile exclude patterns: %w", err)
	}

	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.config = cfg
	a.paths = paths
	a.filter = filter
	slog.Debug("configuration applied", "config", cfg.Describe())
	return nil
}

// SetCache replaces the stub cache. A nil cache disables skipping.
func (a *App) SetCache(c ports.StubCache) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.cache = c
}

func (a *App) Config() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.config
}

func (a *App) Paths() config.ResolvedPaths {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.paths
}

// StubOptions returns the generator options of the current configuration.
func (a *App) StubOptions() stub.Options {
	cfg := a.Config()
	return stub.Options{
		Permissive: cfg.Stub.Permissive,
		LineLength: cfg.Stub.LineLength,
		Indent:     cfg.Stub.Indent,
	}
}

func (a *App) GenerationService() ports.GenerationService {
	return &generationService{app: a}
}

func (a *App) LastRun() (ports.RunSummary, bool) {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	if a.lastRun == nil {
		return ports.RunSummary{}, false
	}
	return *a.lastRun, true
}

func (a *App) setLastRun(summary ports.RunSummary) {
	a.lastMu.Lock()
	defer a.lastMu.Unlock()
	a.lastRun = &summary
}

func (a *App) stubCache() ports.StubCache {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cache
}

func (a *App) Close() error {
	c := a.stubCache()
	if c == nil {
		return nil
	}
	return c.Close()
}
