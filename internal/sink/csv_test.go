package sink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guttosm/macropulse/internal/domain/models"
)

func TestLoad_Formatting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	tbl := models.NewTable("Date", "Symbol", "Open", "Quarter")
	tbl.Append(time.Date(2021, 2, 3, 0, 0, 0, 0, time.UTC), "USD/TRY", 7.4567, 1)
	tbl.Append(time.Date(2021, 2, 4, 0, 0, 0, 0, time.UTC), "USD/INR", 72.0, 2)

	if err := NewCSV(path).Load(tbl); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "Date,Symbol,Open,Quarter\n" +
		"2021-02-03,USD/TRY,7.46,1\n" +
		"2021-02-04,USD/INR,72.00,2\n"
	if string(got) != want {
		t.Fatalf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestLoad_EmptyTableKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	tbl := models.NewTable("Parameter", "Amount ($M)", "Start_Quarter", "End_Quarter")

	if err := NewCSV(path).Load(tbl); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "Parameter,Amount ($M),Start_Quarter,End_Quarter\n" {
		t.Fatalf("output: %q", got)
	}
}

func TestLoad_RaggedRowRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	// Pre-existing output must survive a failed load.
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	tbl := models.NewTable("A", "B")
	tbl.Append("only one cell")
	if err := NewCSV(path).Load(tbl); err == nil {
		t.Fatalf("expected error for ragged row")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "old\n" {
		t.Fatalf("pre-existing output was modified: %q", got)
	}

	// No temp leftovers either.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("unexpected leftovers in %s: %v", dir, entries)
	}
}

func TestLoad_OverwritesOnSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	tbl := models.NewTable("A")
	tbl.Append("new")
	if err := NewCSV(path).Load(tbl); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "A\nnew\n" {
		t.Fatalf("output: %q", got)
	}
}
