// Package main provides the CLI entry point for sweeper, a parameter
// sweep driver for configuration-file driven benchmarks.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weiihann/sweeper/config"
	"github.com/weiihann/sweeper/harness"
	"github.com/weiihann/sweeper/metrics"
	"github.com/weiihann/sweeper/report"
	"github.com/weiihann/sweeper/runner"
	"github.com/weiihann/sweeper/sweep"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// run executes the CLI and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", firstLine(err.Error()))

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return exitFailure
	}

	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "sweeper",
		Short: "Parameter sweep driver for benchmark executables",
		Long: `Sweeper expands a sweep configuration into every combination of its
candidate values, merges each combination over a base configuration and
runs the benchmark once per combination, one run at a time. With
--aggregate the swept values are written back into the benchmark's
result table so every row is traceable to its configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetGlobalNormalizationFunc(normalizeFlag)

	root.AddCommand(newRunCmd(stdout, stderr))
	root.AddCommand(newPlanCmd(stdout, stderr))

	return root
}

// normalizeFlag accepts the underscore spellings used by earlier
// sweep scripts (--base_config, --section_name).
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if name == "section-name" {
		name = "section"
	}

	return pflag.NormalizedName(name)
}

type runConfig struct {
	baseConfig    string
	sweepConfig   string
	section       string
	label         string
	aggregate     bool
	benchmark     string
	benchmarkArgs []string
	env           []string
	workDir       string
	tmpDir        string
	timeout       time.Duration
	force         bool
	reportFormat  string
	metricsFile   string
	logLevel      string
	logFormat     string
}

func addInputFlags(flags *pflag.FlagSet, cfg *runConfig) {
	flags.StringVar(&cfg.baseConfig, "base-config", "",
		"Base configuration file shared by all runs")
	flags.StringVar(&cfg.sweepConfig, "sweep-config", "",
		"Configuration file listing comma-separated candidate values")
	flags.StringVar(&cfg.section, "section", "",
		"Section of the sweep configuration holding the swept parameters")
	flags.StringVar(&cfg.logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	flags.StringVar(&cfg.logFormat, "log-format", "auto",
		"Log format: auto, text, json")
}

func markInputsRequired(cmd *cobra.Command) {
	for _, name := range []string{"base-config", "sweep-config", "section"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func newRunCmd(stdout, stderr io.Writer) *cobra.Command {
	var cfg runConfig

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark for every parameter combination",
		Long: `Run the benchmark once per parameter combination. Runs are strictly
sequential; the first failing run aborts the sweep.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd.Context(), stdout, stderr, cfg)
		},
	}

	flags := cmd.Flags()
	addInputFlags(flags, &cfg)
	flags.StringVar(&cfg.label, "label", "",
		"Result label (default: "+runner.DefaultLabel+")")
	flags.BoolVar(&cfg.aggregate, "aggregate", false,
		"Annotate the result table with swept values after each run")
	flags.StringVar(&cfg.benchmark, "benchmark", harness.DefaultBinary,
		"Benchmark executable, resolved on PATH")
	flags.StringArrayVar(&cfg.benchmarkArgs, "benchmark-arg", nil,
		"Benchmark argument, repeatable; {config} and {label} are substituted "+
			"(default: exec --config_file {config} --label {label})")
	flags.StringArrayVar(&cfg.env, "env", nil,
		"Extra KEY=VALUE environment for the benchmark, repeatable")
	flags.StringVar(&cfg.workDir, "work-dir", "",
		"Benchmark working directory, where result tables are written (default: current directory)")
	flags.StringVar(&cfg.tmpDir, "tmp-dir", "",
		"Directory for per-run configuration files (default: system temp dir)")
	flags.DurationVar(&cfg.timeout, "timeout", 0,
		"Per-run timeout (0 = none)")
	flags.BoolVar(&cfg.force, "force", false,
		"Remove an existing result table for the label instead of failing")
	flags.StringVar(&cfg.reportFormat, "report", report.FormatText,
		"Run report format: text, json, yaml")
	flags.StringVar(&cfg.metricsFile, "metrics-textfile", "",
		"Write Prometheus metrics to this file after the sweep")
	markInputsRequired(cmd)

	return cmd
}

func newPlanCmd(stdout, stderr io.Writer) *cobra.Command {
	var cfg runConfig

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the parameter combinations without running anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showPlan(cmd.Context(), stdout, stderr, cfg)
		},
	}

	addInputFlags(cmd.Flags(), &cfg)
	markInputsRequired(cmd)

	return cmd
}

func showPlan(ctx context.Context, stdout, stderr io.Writer, cfg runConfig) error {
	logger, err := newLogger(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		return err
	}

	plan, _, err := preparePlan(ctx, logger, stdout, cfg)
	if err != nil {
		return err
	}

	for c := range plan.Spec.Combinations() {
		fmt.Fprintf(stdout, "  %s\n", formatCombination(c))
	}

	return nil
}

func runSweep(ctx context.Context, stdout, stderr io.Writer, cfg runConfig) error {
	logger, err := newLogger(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		return err
	}

	switch cfg.reportFormat {
	case report.FormatText, report.FormatJSON, report.FormatYAML:
	default:
		return &ExitError{
			Code:    exitFailure,
			Message: fmt.Sprintf("invalid report format %q: must be text, json or yaml", cfg.reportFormat),
		}
	}

	plan, base, err := preparePlan(ctx, logger, stdout, cfg)
	if err != nil {
		return err
	}

	binPath, err := harness.ResolveBinary(cfg.benchmark)
	if err != nil {
		return err
	}

	workDir := cfg.workDir
	if workDir == "" {
		workDir = "."
	}

	workDir, err = filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolve work dir: %w", err)
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}

	tmpDir := cfg.tmpDir
	if tmpDir != "" {
		if tmpDir, err = filepath.Abs(tmpDir); err != nil {
			return fmt.Errorf("resolve tmp dir: %w", err)
		}
	}

	executor := harness.NewCommandExecutor(binPath, cfg.benchmarkArgs, cfg.env, logger)
	executor.Dir = workDir
	executor.Timeout = cfg.timeout
	executor.Stdout = stdout
	executor.Stderr = stderr

	recorder := metrics.NewRecorder()

	rep, runErr := runner.RunAll(ctx, base, plan.Spec, executor, runner.Options{
		Section:   cfg.section,
		Label:     runner.ResolveLabel(cfg.label),
		Aggregate: cfg.aggregate,
		ResultDir: workDir,
		Overwrite: cfg.force,
		TempDir:   tmpDir,
		Logger:    logger,
		Progress:  stdout,
		Metrics:   recorder,
	})

	if rep != nil && len(rep.Runs) > 0 {
		if err := report.Write(stdout, cfg.reportFormat, rep); err != nil {
			logger.ErrorContext(ctx, "failed to write report", slog.String("error", err.Error()))
		}
	}

	if cfg.metricsFile != "" {
		if err := recorder.WriteTextfile(cfg.metricsFile); err != nil {
			logger.ErrorContext(ctx, "failed to write metrics",
				slog.String("path", cfg.metricsFile),
				slog.String("error", err.Error()),
			)
		}
	}

	return runErr
}

// preparePlan loads both configuration files and prints the sweep plan.
func preparePlan(
	ctx context.Context,
	logger *slog.Logger,
	stdout io.Writer,
	cfg runConfig,
) (sweep.Plan, config.Configuration, error) {
	base, sweepCfg, err := loadConfigs(cfg.baseConfig, cfg.sweepConfig)
	if err != nil {
		return sweep.Plan{}, config.Configuration{}, err
	}

	plan := sweep.NewPlan(base, sweepCfg, cfg.section)
	report.WritePlan(stdout, plan)

	if !plan.HasMatch {
		logger.WarnContext(ctx, "sweep section not found, running base configuration once",
			slog.String("section", cfg.section),
			slog.String("sweep_config", cfg.sweepConfig),
		)
	}

	return plan, base, nil
}

// loadConfigs reads the base and sweep configurations, mapping each kind
// of failure to its own exit status.
func loadConfigs(basePath, sweepPath string) (config.Configuration, config.Configuration, error) {
	base, err := config.Load(basePath)
	if err != nil {
		return config.Configuration{}, config.Configuration{}, configError("base", exitBaseConfigMissing, err)
	}

	sweepCfg, err := config.Load(sweepPath)
	if err != nil {
		return config.Configuration{}, config.Configuration{}, configError("sweep", exitSweepConfigMissing, err)
	}

	return base, sweepCfg, nil
}

func configError(kind string, missingCode int, err error) error {
	if errors.Is(err, config.ErrNotFound) {
		return &ExitError{
			Code:    missingCode,
			Message: fmt.Sprintf("%s config file does not exist on filesystem: %v", kind, err),
			Err:     err,
		}
	}

	return &ExitError{
		Code:    exitConfigInvalid,
		Message: fmt.Sprintf("%s config file is invalid: %v", kind, err),
		Err:     err,
	}
}

func formatCombination(c sweep.Combination) string {
	if len(c) == 0 {
		return "(base configuration)"
	}

	return c.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}
