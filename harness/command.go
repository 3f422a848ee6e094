package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/weiihann/sweeper/results"
)

// Argument placeholders substituted by CommandExecutor.
const (
	ConfigPlaceholder = "{config}"
	LabelPlaceholder  = "{label}"
)

// DefaultArgs invokes the benchmark's exec mode.
var DefaultArgs = []string{
	"exec",
	"--config_file", ConfigPlaceholder,
	"--label", LabelPlaceholder,
}

// stderrTail bounds how much stderr is kept for error messages.
const stderrTail = 4096

// CommandExecutor runs the benchmark as a child process.
type CommandExecutor struct {
	Name       string
	BinaryPath string
	Args       []string
	Env        []string
	Dir        string
	Timeout    time.Duration
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
}

// NewCommandExecutor creates a CommandExecutor for binaryPath. Args may
// contain {config} and {label}; nil args selects DefaultArgs. Env is
// appended to the inherited environment, which is where cluster sizing
// for the benchmark (worker counts, interfaces) is passed.
func NewCommandExecutor(
	binaryPath string,
	args, env []string,
	logger *slog.Logger,
) *CommandExecutor {
	if args == nil {
		args = DefaultArgs
	}

	if logger == nil {
		logger = discardLogger()
	}

	name := filepath.Base(binaryPath)

	return &CommandExecutor{
		Name:       name,
		BinaryPath: binaryPath,
		Args:       args,
		Env:        env,
		Stdout:     io.Discard,
		Stderr:     io.Discard,
		Logger:     logger.With(slog.String("benchmark", name)),
	}
}

// Execute runs the benchmark once and waits for it to exit.
func (e *CommandExecutor) Execute(
	ctx context.Context,
	configPath, label string,
) (Outcome, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := expandArgs(e.Args, configPath, label)

	cmd := exec.CommandContext(ctx, e.BinaryPath, args...)
	cmd.Dir = e.Dir

	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}

	tail := &tailBuffer{max: stderrTail}
	cmd.Stdout = e.Stdout
	cmd.Stderr = tail

	if e.Stderr != nil {
		cmd.Stderr = io.MultiWriter(e.Stderr, tail)
	}

	logger := e.Logger
	if logger == nil {
		logger = discardLogger()
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("binary", e.BinaryPath),
		slog.String("config", configPath),
		slog.String("label", label),
	)

	start := time.Now()

	if err := cmd.Run(); err != nil {
		return Outcome{}, fmt.Errorf(
			"benchmark %s failed: %w\nstderr: %s",
			e.Name, err, tail.String(),
		)
	}

	logger.InfoContext(ctx, "benchmark finished",
		slog.Duration("wall_time", time.Since(start)),
	)

	return Outcome{ResultPath: results.Path(e.Dir, label)}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func expandArgs(args []string, configPath, label string) []string {
	r := strings.NewReplacer(
		ConfigPlaceholder, configPath,
		LabelPlaceholder, label,
	)

	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}

	return out
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}

	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
