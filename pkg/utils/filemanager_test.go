package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
	)
	if err := fm.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return fm
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestManager(t)
	for _, name := range []string{"b.csv", "a.XLSX", "notes.txt", ".hidden.csv", "~$a.xlsx"} {
		touch(t, filepath.Join(fm.InputDir, name))
	}
	if err := os.Mkdir(filepath.Join(fm.InputDir, "dir.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := fm.DiscoverInputFiles()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(fm.InputDir, "a.XLSX"), filepath.Join(fm.InputDir, "b.csv")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverInputFiles = %v, want %v", got, want)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "nope"), "", "")
	if _, err := fm.DiscoverInputFiles(); err == nil {
		t.Fatal("expected an error for a missing input directory")
	}
}

func TestArchiveInputFile(t *testing.T) {
	fm := newTestManager(t)
	fm.now = func() time.Time { return time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC) }

	src := filepath.Join(fm.InputDir, "ledger.csv")
	touch(t, src)
	first, err := fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if first != filepath.Join(fm.InputArchiveDir, "ledger.csv") {
		t.Errorf("archived to %s", first)
	}
	if FileExists(src) {
		t.Error("source still present after archival")
	}

	// A second ledger with the same name must not overwrite the first.
	touch(t, src)
	second, err := fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if second != filepath.Join(fm.InputArchiveDir, "ledger_20240115_143022.csv") {
		t.Errorf("collision archived to %s", second)
	}
}

func TestArchiveTimestampSubdirs(t *testing.T) {
	fm := newTestManager(t)
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) }

	src := filepath.Join(fm.InputDir, "ledger.csv")
	touch(t, src)
	got, err := fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(fm.InputArchiveDir, "2024", "03", "05", "ledger.csv"); got != want {
		t.Errorf("archived to %s, want %s", got, want)
	}
}

func TestArchiveDisabled(t *testing.T) {
	fm := newTestManager(t)
	fm.ArchiveOnSuccess = false

	src := filepath.Join(fm.InputDir, "ledger.csv")
	touch(t, src)
	got, err := fm.ArchiveInputFile(src)
	if err != nil || got != src || !FileExists(src) {
		t.Errorf("ArchiveInputFile = %s, %v", got, err)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{ledger}_{timestamp}_{uuid}", map[string]string{"ledger": "junho/2024"}, "json")

	re := regexp.MustCompile(`^junho_2024_\d{8}_\d{6}_[0-9a-f-]{36}\.json$`)
	if !re.MatchString(name) {
		t.Errorf("unexpected name %q", name)
	}

	if got := GenerateOutputFileName("report.xlsx", nil, "xlsx"); got != "report.xlsx" {
		t.Errorf("extension duplicated: %q", got)
	}

	a := GenerateOutputFileName("{uuid}", nil, "txt")
	b := GenerateOutputFileName("{uuid}", nil, "txt")
	if a == b {
		t.Error("uuid placeholder is not unique")
	}
}

func TestLedgerName(t *testing.T) {
	if got := LedgerName("/data/in/junho.2024.csv"); got != "junho.2024" {
		t.Errorf("LedgerName = %q", got)
	}
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	if err != nil || path != "" {
		t.Fatalf("empty log: %q, %v", path, err)
	}

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "ledger.csv",
		ErrorType:    "schema",
		ErrorMessage: "missing required column: Valor",
		Column:       "Valor",
	}}, dir)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Total Errors: 1", "ledger.csv", "Column:     Valor"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("error log missing %q", want)
		}
	}
}

func TestWriteSummaryLog(t *testing.T) {
	var s ProcessingSummary
	s.TotalFiles = 2
	s.Record(ProcessedFileInfo{InputFile: "a.csv", OutputFile: "a.txt", RunID: "run-1", Rows: 10, Dropped: 2, Selected: 7, Duplicates: 2})
	s.Fail(FailedFileInfo{InputFile: "b.csv", ErrorType: "parse", ErrorMessage: "ledger file is empty"})

	if s.SuccessfulFiles != 1 || s.FailedFiles != 1 || s.TotalRows != 10 || s.TotalDropped != 2 || s.TotalSelected != 7 {
		t.Fatalf("unexpected totals %+v", s)
	}

	path, err := WriteSummaryLog(s, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Successful:     1", "Failed:         1", "run-1", "ledger file is empty"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
