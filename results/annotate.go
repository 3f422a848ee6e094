package results

import (
	"fmt"
	"sync"

	"github.com/weiihann/sweeper/sweep"
)

// Fill adds a column per assignment. Existing columns only receive the
// value in missing cells; new columns receive it on every row. Rows are
// padded to the header width. Applying Fill twice is a no-op.
func (t *Table) Fill(c sweep.Combination) {
	for _, a := range c {
		if t.Column(a.Name) < 0 {
			t.Header = append(t.Header, a.Name)
		}
	}

	for i, row := range t.Rows {
		for len(row) < len(t.Header) {
			row = append(row, "")
		}

		t.Rows[i] = row
	}

	for _, a := range c {
		col := t.Column(a.Name)
		for _, row := range t.Rows {
			if row[col] == "" {
				row[col] = a.Value
			}
		}
	}
}

// Annotate loads the table at path, fills in c and writes it back.
func Annotate(path string, c sweep.Combination) error {
	t, err := Load(path)
	if err != nil {
		return err
	}

	t.Fill(c)

	if err := t.Save(path); err != nil {
		return fmt.Errorf("save annotated table: %w", err)
	}

	return nil
}

// Annotator serializes Annotate calls per result path.
type Annotator struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAnnotator creates an Annotator.
func NewAnnotator() *Annotator {
	return &Annotator{locks: make(map[string]*sync.Mutex)}
}

// Annotate annotates the table at path while holding that path's lock.
func (a *Annotator) Annotate(path string, c sweep.Combination) error {
	lock := a.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	return Annotate(path, c)
}

func (a *Annotator) lockFor(path string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[path]
	if !ok {
		l = &sync.Mutex{}
		a.locks[path] = l
	}

	return l
}
