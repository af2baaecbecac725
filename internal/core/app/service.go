package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"genstub/internal/core/errors"
	"genstub/internal/core/ports"
	"genstub/internal/data/cache"
	"genstub/internal/engine/stub"
	"genstub/internal/shared/observability"
	"genstub/internal/shared/util"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type generationService struct {
	app *App
}

var _ ports.GenerationService = (*generationService)(nil)

func (s *generationService) Generate(ctx context.Context, req ports.GenerateRequest) (ports.RunSummary, error) {
	ctx, span := observability.Tracer.Start(ctx, "generationService.Generate",
		trace.WithAttributes(attribute.Int("paths", len(req.Paths))))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.RunSummary{}, err
	}
	units, err := s.app.ScanSources(req.Paths)
	if err != nil {
		return ports.RunSummary{}, errors.AddContext(err, errors.CtxOperation, "scan_sources")
	}
	summary := s.app.run(ctx, units, runOptions{force: req.Force})
	span.SetAttributes(
		attribute.String("run_id", summary.RunID),
		attribute.Int("generated", summary.Generated),
		attribute.Int("failed", summary.Failed),
	)
	return summary, ctx.Err()
}

func (s *generationService) Watch(ctx context.Context, paths []string, onBatch func(ports.RunSummary)) error {
	return s.app.Watch(ctx, paths, onBatch)
}

func (s *generationService) Close() error {
	return s.app.Close()
}

type runOptions struct {
	force   bool
	limiter *util.Limiter
}

// unitJob carries what every unit of one run shares.
type unitJob struct {
	opts        stub.Options
	header      string
	optionsHash string
	runID       string
	force       bool
	cache       ports.StubCache
}

// run processes units one at a time. A failing unit is logged and counted
// and the run moves on.
func (a *App) run(ctx context.Context, units []Unit, ro runOptions) ports.RunSummary {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	start := time.Now()
	job := unitJob{
		opts:   a.StubOptions(),
		header: a.Config().Stub.Header,
		runID:  uuid.NewString(),
		force:  ro.force,
		cache:  a.stubCache(),
	}
	job.optionsHash = cache.Hash([]byte(fmt.Sprintf("%t|%d|%d", job.opts.Permissive, job.opts.LineLength, job.opts.Indent)), []byte(job.header))

	summary := ports.RunSummary{RunID: job.runID}
	for _, u := range units {
		if ctx.Err() != nil {
			break
		}
		if ro.limiter != nil {
			if err := ro.limiter.Wait(ctx, 1); err != nil {
				break
			}
		}

		outcome, err := a.processUnit(ctx, u, job)
		observability.UnitsTotal.WithLabelValues(outcome).Inc()
		switch outcome {
		case observability.OutcomeGenerated:
			summary.Generated++
			summary.Written = append(summary.Written, u.Destination)
		case observability.OutcomeUnchanged:
			summary.Unchanged++
		case observability.OutcomeEmpty:
			summary.Skipped++
		case observability.OutcomeFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, ports.UnitFailure{Source: u.Source, Error: err.Error()})
			slog.Warn("failed to generate stub", "path", u.Source, "error", err)
		}
	}
	summary.Duration = time.Since(start)

	a.setLastRun(summary)
	slog.Info("stub generation finished",
		"run_id", summary.RunID,
		"generated", summary.Generated,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)
	return summary
}

func (a *App) processUnit(ctx context.Context, u Unit, job unitJob) (string, error) {
	_, span := observability.Tracer.Start(ctx, "app.processUnit",
		trace.WithAttributes(attribute.String("source", u.Source)))
	defer span.End()

	outcome, err := a.generateUnit(u, job)
	span.SetAttributes(attribute.String("outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return outcome, err
}

func (a *App) generateUnit(u Unit, job unitJob) (string, error) {
	key := cacheKey(u.Source)
	source, err := os.ReadFile(u.Source)
	if err != nil {
		return observability.OutcomeFailed, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "cannot read source"), errors.CtxPath, u.Source)
	}
	sourceHash := cache.Hash(source)
	optionsHash := cache.Hash([]byte(job.optionsHash), []byte(u.Destination))

	if !job.force && job.cache != nil && fileExists(u.Destination) {
		fresh, err := job.cache.Fresh(key, sourceHash, optionsHash)
		if err != nil {
			slog.Debug("cache lookup failed", "path", u.Source, "error", err)
		} else if fresh {
			slog.Debug("stub is up to date", "path", u.Source)
			return observability.OutcomeUnchanged, nil
		}
	}

	slog.Debug("generating stub", "source", u.Source, "destination", u.Destination)
	timer := prometheus.NewTimer(observability.GenerateDuration)
	text, err := stub.Generate(source, job.opts)
	timer.ObserveDuration()
	if err != nil {
		if names := errors.Names(err); len(names) > 0 {
			observability.UnresolvedTypesTotal.Add(float64(len(names)))
		}
		a.forget(job.cache, key)
		return observability.OutcomeFailed, errors.AddContext(err, errors.CtxPath, u.Source)
	}
	if text == "" {
		a.forget(job.cache, key)
		return observability.OutcomeEmpty, nil
	}

	content := []byte("# " + job.header + "\n\n" + text)
	if err := util.WriteFileAtomic(u.Destination, content, 0o644); err != nil {
		a.forget(job.cache, key)
		return observability.OutcomeFailed, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "cannot write stub"), errors.CtxPath, u.Destination)
	}

	if job.cache != nil {
		err := job.cache.Record(cache.Entry{
			SourcePath:  key,
			SourceHash:  sourceHash,
			OptionsHash: optionsHash,
			StubHash:    cache.Hash(content),
			RunID:       job.runID,
		})
		if err != nil {
			slog.Warn("failed to record stub in cache", "path", u.Source, "error", err)
		}
	}
	return observability.OutcomeGenerated, nil
}

func (a *App) forget(c ports.StubCache, key string) {
	if c == nil {
		return
	}
	if err := c.Forget(key); err != nil {
		slog.Debug("failed to drop cache record", "path", key, "error", err)
	}
}

func cacheKey(source string) string {
	if abs, err := filepath.Abs(source); err == nil {
		return abs
	}
	return filepath.Clean(source)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
