package harness

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// DefaultBinary is the benchmark searched for when none is given.
const DefaultBinary = "genomics-benchmarks"

// ResolveBinary returns an absolute path for the benchmark binary. Bare
// names are looked up on PATH.
func ResolveBinary(name string) (string, error) {
	if name == "" {
		name = DefaultBinary
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("resolve benchmark %q: %w", name, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve benchmark %q: %w", name, err)
	}

	return abs, nil
}
