// Package harness defines how a sweep hands one merged configuration to
// the benchmark, and provides a subprocess implementation.
package harness

import "context"

// Outcome describes what a benchmark run produced.
type Outcome struct {
	// ResultPath is the result table written by the run. Empty means the
	// caller should derive it from the label.
	ResultPath string
}

// Executor runs the benchmark once against a configuration file.
type Executor interface {
	Execute(ctx context.Context, configPath, label string) (Outcome, error)
}

// ExecutorFunc adapts a function, such as an in-process benchmark entry
// point, to Executor.
type ExecutorFunc func(ctx context.Context, configPath, label string) (Outcome, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, configPath, label string) (Outcome, error) {
	return f(ctx, configPath, label)
}
