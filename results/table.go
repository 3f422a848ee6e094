// Package results reads, annotates and writes the pipe-delimited result
// tables produced by the benchmark.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Delimiter separates fields in a result table.
const Delimiter = '|'

// Suffix is appended to a run label to name its result table.
const Suffix = ".psv"

// ErrNotFound is returned when a result table does not exist.
var ErrNotFound = errors.New("result table not found")

// Path returns the result table location for label inside dir.
func Path(dir, label string) string {
	return filepath.Join(dir, label+Suffix)
}

// Table is a header row plus data rows. Rows may be shorter than the
// header; trailing cells are then missing.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}

	return -1
}

// Cell returns the value at row/col, or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if col < len(t.Rows[row]) {
		return t.Rows[row][col]
	}

	return ""
}

// Load reads a result table from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return t, nil
}

// Read parses a pipe-delimited table whose first record is the header.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	t := &Table{}
	if len(records) == 0 {
		return t, nil
	}

	t.Header = records[0]
	t.Rows = records[1:]

	return t, nil
}

// Write emits the header and rows, without an index column.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	if len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return err
		}
	}

	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}

	return cw.Error()
}

// filePerm is the mode of a newly created result table.
const filePerm os.FileMode = 0o644

// Save writes the table to path through a temporary file in the same
// directory, so readers never observe a partial table. An existing table
// keeps its permission bits.
func (t *Table) Save(path string) error {
	perm := filePerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := t.Write(tmp); err != nil {
		tmp.Close()

		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()

		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
