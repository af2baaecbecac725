package app

import (
	"context"
	"log/slog"

	"genstub/internal/core/ports"
	"genstub/internal/core/watcher"
	"genstub/internal/shared/util"
)

// Watch regenerates the stubs of changed sources below paths until ctx is
// done. Regeneration is throttled by the configured per-second limit.
func (a *App) Watch(ctx context.Context, paths []string, onBatch func(ports.RunSummary)) error {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	cfg := a.Config()
	limiter := util.PerSecond(cfg.Watch.MaxRegenerationsPerSecond)

	a.cfgMu.RLock()
	filter := a.filter
	a.cfgMu.RUnlock()

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, filter, func(changed []string) {
		units := a.changedUnits(changed)
		if len(units) == 0 {
			return
		}
		summary := a.run(ctx, units, runOptions{limiter: limiter})
		if onBatch != nil {
			onBatch(summary)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(paths); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", paths, "debounce", cfg.Watch.Debounce)
	<-ctx.Done()
	return nil
}

// changedUnits maps changed paths to units. Removed sources are dropped;
// their stubs are left in place.
func (a *App) changedUnits(changed []string) []Unit {
	outDir := a.Paths().OutputDir
	units := make([]Unit, 0, len(changed))
	for _, path := range changed {
		if !fileExists(path) {
			slog.Debug("source no longer exists, skipping", "path", path)
			continue
		}
		units = append(units, Unit{Source: path, Destination: Destination(path, outDir)})
	}
	return units
}

