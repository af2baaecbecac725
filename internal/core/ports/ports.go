package ports

import (
	"context"
	"time"

	"genstub/internal/data/cache"
)

// StubCache abstracts the record of up-to-date stubs.
type StubCache interface {
	Fresh(path, sourceHash, optionsHash string) (bool, error)
	Record(entry cache.Entry) error
	Forget(path string) error
	Close() error
}

// GenerateRequest names the files and directories of a run.
type GenerateRequest struct {
	Paths []string
	// Force regenerates units the cache reports as fresh.
	Force bool
}

// UnitFailure is a source unit that produced no stub.
type UnitFailure struct {
	Source string `json:"source" yaml:"source"`
	Error  string `json:"error" yaml:"error"`
}

// RunSummary counts the outcome of every unit in a run.
type RunSummary struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Generated int           `json:"generated" yaml:"generated"`
	Unchanged int           `json:"unchanged" yaml:"unchanged"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Failed    int           `json:"failed" yaml:"failed"`
	Failures  []UnitFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Written   []string      `json:"written,omitempty" yaml:"written,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

func (s RunSummary) Units() int {
	return s.Generated + s.Unchanged + s.Skipped + s.Failed
}

// GenerationService drives stub generation for the CLI.
type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (RunSummary, error)
	// Watch regenerates changed units until ctx is done. Each batch summary
	// is passed to onBatch.
	Watch(ctx context.Context, paths []string, onBatch func(RunSummary)) error
	Close() error
}
