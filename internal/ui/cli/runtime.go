package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreapp "genstub/internal/core/app"
	"genstub/internal/core/config"
)

type runtime struct {
	globals *CLI
	stdout  io.Writer
	stderr  io.Writer

	configPath string
}

func configureLogging(w io.Writer, debug bool) func() {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	previous := slog.Default()
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	if debug {
		slog.Debug("running in debug mode")
	}
	return func() { slog.SetDefault(previous) }
}

// loadConfig reads the configuration named on the command line, or the
// default file in the working directory when it exists. Environment
// overrides are applied last.
func (rt *runtime) loadConfig(cwd string) (*config.Config, error) {
	path := strings.TrimSpace(rt.globals.Config)
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cwd, config.DefaultFile)
	}

	var (
		cfg *config.Config
		err error
	)
	if explicit {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		rt.configPath = path
	}

	config.ApplyEnvOverrides(cfg)
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// stubOverrides are command-line settings that take precedence over the
// configuration file.
type stubOverrides struct {
	OutputDir  string
	Permissive bool
	NoCache    bool
}

func (rt *runtime) newApp(o stubOverrides) (*coreapp.App, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("detect working directory: %w", err)
	}
	cfg, err := rt.loadConfig(cwd)
	if err != nil {
		return nil, err
	}
	o.apply(cfg)
	return coreapp.New(cfg, cwd)
}

func (o stubOverrides) apply(cfg *config.Config) {
	if o.OutputDir != "" {
		cfg.Paths.OutputDir = o.OutputDir
	}
	if o.Permissive {
		cfg.Stub.Permissive = true
	}
	if o.NoCache {
		cfg.Cache.Enabled = false
	}
}

// readSource loads a single source file for the inspection commands.
func readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, expected a source file", path)
	}
	return os.ReadFile(path)
}
