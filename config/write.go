package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Write serializes cfg in the same format Load reads. Values are written
// verbatim; multi-line values become indented continuation lines.
func Write(w io.Writer, cfg Configuration) error {
	bw := bufio.NewWriter(w)

	for i, s := range cfg.Sections {
		if i > 0 {
			bw.WriteString("\n")
		}

		fmt.Fprintf(bw, "[%s]\n", s.Name)

		for _, k := range s.Keys {
			value := strings.ReplaceAll(k.Value, "\n", "\n\t")
			fmt.Fprintf(bw, "%s = %s\n", k.Name, value)
		}
	}

	return bw.Flush()
}

// WriteFile writes cfg to path, replacing any existing file.
func WriteFile(path string, cfg Configuration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Write(f, cfg); err != nil {
		f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}
