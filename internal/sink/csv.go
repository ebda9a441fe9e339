// Package sink serializes tidy tables to delimited files. Formatting is
// fixed here and nowhere else: dates as YYYY-MM-DD, floats with two
// decimal places.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/guttosm/macropulse/internal/domain/models"
)

const dateLayout = "2006-01-02"

// CSV writes one table per Load call to a fixed path. The write is
// staged through a temp file in the target directory and renamed into
// place, so a failed run never leaves a partial file and never clobbers
// a pre-existing output.
type CSV struct {
	path string
}

// NewCSV returns a sink writing to path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Load serializes t. Rows must match the header width.
func (s *CSV) Load(t *models.Table) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := writeTable(tmp, t); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("publish output: %w", err)
	}
	return nil
}

func writeTable(f *os.File, t *models.Table) error {
	w := csv.NewWriter(f)

	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d: %d cells for %d columns", i+1, len(row), len(t.Columns))
		}
		rec := make([]string, len(row))
		for j, cell := range row {
			rec[j] = formatCell(cell)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func formatCell(cell any) string {
	switch v := cell.(type) {
	case time.Time:
		return v.Format(dateLayout)
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
