package logs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			t.Fatalf("write line: %v", err)
		}
	}
}

func TestLatestRunLog(t *testing.T) {
	dir := t.TempDir()

	path, ok, err := LatestRunLog(dir)
	if err != nil {
		t.Fatalf("empty dir: %v", err)
	}
	if ok || path != "" {
		t.Fatalf("expected no run log, got %q", path)
	}

	for _, name := range []string{
		"koanalysis-20260829T100000Z.log",
		"koanalysis-20260829T120000Z.log",
		"koanalysis-20260828T235900Z.log",
		"unrelated.txt",
	} {
		writeLines(t, filepath.Join(dir, name), "entry")
	}

	path, ok, err = LatestRunLog(dir)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !ok {
		t.Fatal("expected a run log")
	}
	if filepath.Base(path) != "koanalysis-20260829T120000Z.log" {
		t.Fatalf("unexpected latest log %q", path)
	}
}

func TestLatestRunLogMissingDir(t *testing.T) {
	_, ok, err := LatestRunLog(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir: %v", err)
	}
	if ok {
		t.Fatal("expected no run log for missing dir")
	}
}

func TestLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	writeLines(t, path, "one", "two", "three", "four")

	lines, offset, err := LastLines(path, 2)
	if err != nil {
		t.Fatalf("last lines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "three" || lines[1] != "four" {
		t.Fatalf("unexpected lines %v", lines)
	}
	if offset == 0 {
		t.Fatal("expected non-zero offset")
	}

	lines, _, err = LastLines(path, 10)
	if err != nil {
		t.Fatalf("last lines with slack: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected all four lines, got %v", lines)
	}
}

func TestLastLinesMissingFile(t *testing.T) {
	lines, offset, err := LastLines(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %v at %d", lines, offset)
	}
}

func TestFollowEmitsNewLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	writeLines(t, path, "old")

	_, offset, err := LastLines(path, 0)
	if err != nil {
		t.Fatalf("offset: %v", err)
	}

	writeLines(t, path, "fresh one", "fresh two")

	ctx, cancel := context.WithCancel(context.Background())
	got := make([]string, 0, 2)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
			got = append(got, line)
			if len(got) == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("unexpected follow error: %v", err)
		}
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("follow did not observe new lines in time")
	}

	if len(got) != 2 || got[0] != "fresh one" || got[1] != "fresh two" {
		t.Fatalf("unexpected lines %v", got)
	}
}
