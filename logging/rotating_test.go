package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestWriter(t *testing.T, maxSize int64) (*RotatingWriter, string) {
	t.Helper()
	dir := t.TempDir()
	w, err := NewRotatingWriter(dir, 1, maxSize)
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w, dir
}

func logFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*"+logFileSuffix))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	return matches
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), "2026-W43"},
		{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
	}
	for _, tt := range tests {
		if got := weekKey(tt.date); got != tt.want {
			t.Errorf("weekKey(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestRotatingWriterCreatesWeeklyFile(t *testing.T) {
	w, dir := newTestWriter(t, 1024*1024)

	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := filepath.Join(dir, logFilePrefix+weekKey(time.Now())+logFileSuffix)
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("expected %s: %v", want, err)
	}
	if string(data) != "hello\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestRotatingWriterRotatesOnSize(t *testing.T) {
	w, dir := newTestWriter(t, 64)

	line := []byte(strings.Repeat("x", 40) + "\n")
	for i := 0; i < 3; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("Write() #%d error = %v", i, err)
		}
	}

	files := logFiles(t, dir)
	if len(files) != 3 {
		t.Fatalf("expected 3 files after size rotation, got %v", files)
	}
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() > 64 {
			t.Errorf("%s is %d bytes, over the limit", f, info.Size())
		}
	}
}

func TestRotatingWriterRotatesOnWeekChange(t *testing.T) {
	w, dir := newTestWriter(t, 1024*1024)

	week1 := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	w.mu.Lock()
	w.now = func() time.Time { return week1 }
	w.mu.Unlock()
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatal(err)
	}

	week2 := week1.Add(7 * 24 * time.Hour)
	w.mu.Lock()
	w.now = func() time.Time { return week2 }
	w.mu.Unlock()
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatal(err)
	}

	for _, week := range []time.Time{week1, week2} {
		path := filepath.Join(dir, logFilePrefix+weekKey(week)+logFileSuffix)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
}

func TestRotatingWriterReusesFileBelowLimit(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, logFilePrefix+weekKey(time.Now())+logFileSuffix)
	if err := os.WriteFile(existing, []byte("earlier\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewRotatingWriter(dir, 1, 1024)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("later\n")); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "earlier\nlater\n" {
		t.Errorf("expected append to existing file, got %q", data)
	}
}

func TestRotatingWriterSkipsFullFile(t *testing.T) {
	dir := t.TempDir()
	week := weekKey(time.Now())
	full := filepath.Join(dir, logFilePrefix+week+logFileSuffix)
	if err := os.WriteFile(full, []byte(strings.Repeat("x", 128)), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewRotatingWriter(dir, 1, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("next\n")); err != nil {
		t.Fatal(err)
	}
	numbered := filepath.Join(dir, logFilePrefix+week+"_01"+logFileSuffix)
	if data, err := os.ReadFile(numbered); err != nil || string(data) != "next\n" {
		t.Errorf("expected write to %s, got %q (err %v)", numbered, data, err)
	}
}

func TestRotatingWriterCleanup(t *testing.T) {
	w, dir := newTestWriter(t, 1024*1024)

	old := filepath.Join(dir, logFilePrefix+"2020-W01"+logFileSuffix)
	unrelated := filepath.Join(dir, "other.log")
	for _, p := range []string{old, unrelated} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		past := time.Now().Add(-30 * 24 * time.Hour)
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := w.cleanup()
	if err != nil {
		t.Fatalf("cleanup() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("cleanup() deleted %d files, want 1", deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old log file should be gone")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("files without the log prefix must be kept")
	}
}

func TestRotatingWriterConcurrentWrites(t *testing.T) {
	w, dir := newTestWriter(t, 1024*1024)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := w.Write([]byte("line\n")); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	var total int64
	for _, f := range logFiles(t, dir) {
		info, err := os.Stat(f)
		if err != nil {
			t.Fatal(err)
		}
		total += info.Size()
	}
	if total != 20*50*5 {
		t.Errorf("total bytes = %d, want %d", total, 20*50*5)
	}
}

func TestRotatingWriterWriteAfterClose(t *testing.T) {
	w, _ := newTestWriter(t, 1024)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("late\n")); err == nil {
		t.Error("expected an error writing to a closed writer")
	}
}
