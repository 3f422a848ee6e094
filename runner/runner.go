// Package runner drives a parameter sweep: one merged configuration per
// combination, handed to the benchmark strictly one at a time.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/weiihann/sweeper/config"
	"github.com/weiihann/sweeper/harness"
	"github.com/weiihann/sweeper/metrics"
	"github.com/weiihann/sweeper/results"
	"github.com/weiihann/sweeper/sweep"
)

// TempPattern names the per-run configuration files.
const TempPattern = "sweeper-*.ini"

var (
	// ErrNoSection is returned when Options.Section is empty.
	ErrNoSection = errors.New("sweep section name is required")

	// ErrResultExists is returned before any run when aggregation would
	// append to a result table left by an earlier sweep.
	ErrResultExists = errors.New("result table already exists")
)

// ExecutionError is a benchmark failure for one combination. It aborts
// the sweep.
type ExecutionError struct {
	Index       int
	Total       int
	Combination sweep.Combination
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("run %d/%d (%s): %v", e.Index, e.Total, e.Combination, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Options configure RunAll.
type Options struct {
	// Section receives the swept keys in each merged configuration.
	Section string
	// Label picks each run's result label; nil means ResolveLabel("").
	Label LabelPolicy
	// Aggregate annotates the result table after every run.
	Aggregate bool
	// ResultDir is where result tables are expected when the executor
	// does not report a location.
	ResultDir string
	// Overwrite removes existing result tables instead of failing.
	Overwrite bool
	// TempDir holds the per-run configuration files; "" is os.TempDir.
	// Relative directories are resolved against the current directory.
	TempDir string

	Logger   *slog.Logger
	Progress io.Writer
	Metrics  *metrics.Recorder
}

// Run records one executed combination.
type Run struct {
	Index           int               `json:"index" yaml:"index"`
	Combination     sweep.Combination `json:"combination" yaml:"combination"`
	Label           string            `json:"label" yaml:"label"`
	ResultPath      string            `json:"result_path,omitempty" yaml:"result_path,omitempty"`
	ElapsedMs       int64             `json:"elapsed_ms" yaml:"elapsed_ms"`
	Error           string            `json:"error,omitempty" yaml:"error,omitempty"`
	Annotated       bool              `json:"annotated" yaml:"annotated"`
	AnnotationError string            `json:"annotation_error,omitempty" yaml:"annotation_error,omitempty"`
}

// Report summarizes a sweep, complete or aborted.
type Report struct {
	ID         string    `json:"id" yaml:"id"`
	Section    string    `json:"section" yaml:"section"`
	Total      int       `json:"total" yaml:"total"`
	Completed  int       `json:"completed" yaml:"completed"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Runs       []Run     `json:"runs" yaml:"runs"`
}

type driver struct {
	base      config.Configuration
	exec      harness.Executor
	opts      Options
	logger    *slog.Logger
	progress  io.Writer
	annotator *results.Annotator
}

// RunAll executes every combination of spec, in enumeration order. The
// first executor error stops the sweep and is returned as an
// *ExecutionError together with the partial report. Annotation failures
// are logged and recorded on the run only.
func RunAll(
	ctx context.Context,
	base config.Configuration,
	spec sweep.Spec,
	executor harness.Executor,
	opts Options,
) (*Report, error) {
	if opts.Section == "" {
		return nil, ErrNoSection
	}

	if opts.Label == nil {
		opts.Label = ResolveLabel("")
	}

	d := &driver{
		base:      base,
		exec:      executor,
		opts:      opts,
		logger:    opts.Logger,
		progress:  opts.Progress,
		annotator: results.NewAnnotator(),
	}

	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if d.progress == nil {
		d.progress = io.Discard
	}

	total := spec.Count()

	report := &Report{
		ID:        uuid.NewString(),
		Section:   opts.Section,
		Total:     total,
		StartedAt: time.Now(),
	}

	d.logger = d.logger.With(slog.String("sweep_id", report.ID))
	d.logger.InfoContext(ctx, "starting sweep",
		slog.String("section", opts.Section),
		slog.Int("combinations", total),
		slog.Any("parameters", spec.Names()),
	)

	if opts.Metrics != nil {
		opts.Metrics.SetCombinations(total)
	}

	if opts.Aggregate {
		if err := d.prepareResults(spec); err != nil {
			return report, err
		}
	}

	index := 0

	for c := range spec.Combinations() {
		index++

		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()

			return report, fmt.Errorf("sweep interrupted before run %d/%d: %w", index, total, err)
		}

		fmt.Fprintf(d.progress, "Running benchmark %d/%d\n", index, total)
		d.logger.InfoContext(ctx, "running benchmark",
			slog.Int("index", index),
			slog.Int("total", total),
			slog.String("combination", c.String()),
		)

		run, err := d.runOne(ctx, index, c)
		report.Runs = append(report.Runs, run)

		if err != nil {
			report.FinishedAt = time.Now()

			return report, &ExecutionError{
				Index:       index,
				Total:       total,
				Combination: c,
				Err:         err,
			}
		}

		report.Completed++
	}

	report.FinishedAt = time.Now()

	fmt.Fprintln(d.progress, "Finished.")
	d.logger.InfoContext(ctx, "sweep complete",
		slog.Int("completed", report.Completed),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report, nil
}

// prepareResults applies the overwrite policy to every result table the
// sweep will append to.
func (d *driver) prepareResults(spec sweep.Spec) error {
	seen := make(map[string]bool)
	index := 0

	for c := range spec.Combinations() {
		index++

		path := results.Path(d.opts.ResultDir, d.opts.Label(index, c))
		if seen[path] {
			continue
		}

		seen[path] = true

		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return fmt.Errorf("stat %s: %w", path, err)
		}

		if !d.opts.Overwrite {
			return fmt.Errorf("%w: %s", ErrResultExists, path)
		}

		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}

		d.logger.Warn("removed existing result table", slog.String("path", path))
	}

	return nil
}

// runOne executes a single combination. The merged configuration file
// lives only for the duration of this call.
func (d *driver) runOne(ctx context.Context, index int, c sweep.Combination) (Run, error) {
	label := d.opts.Label(index, c)
	run := Run{Index: index, Combination: c, Label: label}

	merged := sweep.Merge(d.base, c, d.opts.Section)

	configPath, cleanup, err := materialize(d.opts.TempDir, merged)
	if err != nil {
		run.Error = err.Error()

		return run, err
	}
	defer cleanup()

	d.logger.DebugContext(ctx, "wrote merged configuration",
		slog.String("path", configPath),
	)

	start := time.Now()
	outcome, err := d.exec.Execute(ctx, configPath, label)
	elapsed := time.Since(start)

	run.ElapsedMs = elapsed.Milliseconds()

	if d.opts.Metrics != nil {
		d.opts.Metrics.ObserveRun(elapsed, err)
	}

	if err != nil {
		run.Error = err.Error()

		return run, err
	}

	run.ResultPath = outcome.ResultPath
	if run.ResultPath == "" {
		run.ResultPath = results.Path(d.opts.ResultDir, label)
	}

	if d.opts.Aggregate {
		d.annotate(ctx, &run)
	}

	return run, nil
}

func (d *driver) annotate(ctx context.Context, run *Run) {
	if err := d.annotator.Annotate(run.ResultPath, run.Combination); err != nil {
		run.AnnotationError = err.Error()

		if d.opts.Metrics != nil {
			d.opts.Metrics.AnnotationFailed()
		}

		d.logger.WarnContext(ctx, "failed to annotate results",
			slog.Int("index", run.Index),
			slog.String("path", run.ResultPath),
			slog.String("error", err.Error()),
		)

		return
	}

	run.Annotated = true
}

// materialize writes cfg to a private temporary file and returns its
// absolute path and a function removing it. The file is synced and closed
// before the path is returned.
func materialize(dir string, cfg config.Configuration) (string, func(), error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", nil, fmt.Errorf("resolve temp dir: %w", err)
		}

		dir = abs
	}

	f, err := os.CreateTemp(dir, TempPattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp config: %w", err)
	}

	cleanup := func() { os.Remove(f.Name()) }

	if err := config.Write(f, cfg); err != nil {
		f.Close()
		cleanup()

		return "", nil, fmt.Errorf("write temp config: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		cleanup()

		return "", nil, fmt.Errorf("sync temp config: %w", err)
	}

	if err := f.Close(); err != nil {
		cleanup()

		return "", nil, fmt.Errorf("close temp config: %w", err)
	}

	return f.Name(), cleanup, nil
}
