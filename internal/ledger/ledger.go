// Package ledger keeps the per-phase table of failed crawl units. Rows are only
// ever appended in memory and the whole table is rewritten to disk after every
// append so a crash mid-layer loses nothing already recorded.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Column sets used by the crawl phases.
var (
	OwnerRepoError = []string{"Owner", "Repo", "Error"}
	UserError      = []string{"User", "Error"}
)

type Ledger struct {
	path    string
	columns []string

	mu   sync.Mutex
	rows [][]string
}

// Open prepares the ledger file <dir>/<name>.csv and writes its header so a
// phase without failures still leaves an empty table behind.
func Open(dir, name string, columns []string) (*Ledger, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("ledger %s: no columns", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger dir: %w", err)
	}
	l := &Ledger{
		path:    filepath.Join(dir, name+".csv"),
		columns: append([]string(nil), columns...),
	}
	if err := l.flush(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Path() string {
	return l.path
}

// Append records one failed unit. values must line up with the columns.
func (l *Ledger) Append(values ...string) error {
	if len(values) != len(l.columns) {
		return fmt.Errorf("ledger %s: got %d values for %d columns", l.path, len(values), len(l.columns))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, append([]string(nil), values...))
	return l.flush()
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

func (l *Ledger) Rows() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]string, len(l.rows))
	for i, r := range l.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// flush overwrites the file through a temp file and rename. Callers hold mu
// or own l exclusively.
func (l *Ledger) flush() error {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".ledger-*")
	if err != nil {
		return fmt.Errorf("failed to create ledger temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(l.columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	if err := w.WriteAll(l.rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close ledger temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("failed to replace ledger %s: %w", l.path, err)
	}
	return nil
}
