package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreapp "genstub/internal/core/app"
	"genstub/internal/core/config"
	"genstub/internal/core/ports"
	"genstub/internal/shared/observability"
)

type StubFlags struct {
	Output     string `short:"o" help:"Change the output directory." placeholder:"PATH"`
	Permissive bool   `aliases:"generic" help:"Generate permissive stubs: unsigned functions and untyped variables use Any."`
	NoCache    bool   `help:"Regenerate every stub, bypassing and disabling the cache."`
}

func (f StubFlags) overrides() stubOverrides {
	return stubOverrides{OutputDir: f.Output, Permissive: f.Permissive, NoCache: f.NoCache}
}

type GenerateCmd struct {
	StubFlags
	Paths []string `arg:"" optional:"" help:"Source files and directories."`
}

func (c *GenerateCmd) Run(rt *runtime) error {
	if len(c.Paths) == 0 {
		slog.Info("no source files given, nothing to do")
		return nil
	}
	app, err := rt.newApp(c.overrides())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := app.GenerationService().Generate(ctx, ports.GenerateRequest{Paths: c.Paths, Force: c.NoCache})
	if err != nil {
		return err
	}
	printSummary(rt.stdout, summary)
	if summary.Failed > 0 {
		return errUnitsFailed
	}
	return nil
}

type WatchCmd struct {
	StubFlags
	Paths []string `arg:"" optional:"" help:"Directories to watch."`
}

func (c *WatchCmd) Run(rt *runtime) error {
	paths := c.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	app, err := rt.newApp(c.overrides())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := app.Config().Observability.MetricsAddr; addr != "" {
		health := coreapp.NewHealthService(app)
		server := observability.NewServer(addr, health.Check)
		if err := server.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	if rt.configPath != "" {
		overrides := c.overrides()
		cw := config.NewWatcher(rt.configPath, func(cfg *config.Config) {
			overrides.apply(cfg)
			if err := app.UpdateConfig(cfg); err != nil {
				slog.Error("failed to apply reloaded configuration", "error", err)
			}
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config file will not be reloaded", "path", rt.configPath, "error", err)
		} else {
			defer cw.Stop()
		}
	}

	svc := app.GenerationService()
	summary, err := svc.Generate(ctx, ports.GenerateRequest{Paths: paths, Force: c.NoCache})
	if err != nil {
		return err
	}
	printSummary(rt.stdout, summary)

	return svc.Watch(ctx, paths, func(batch ports.RunSummary) {
		printSummary(rt.stdout, batch)
	})
}
