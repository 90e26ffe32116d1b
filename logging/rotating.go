package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	logFilePrefix = "adverse-events-"
	logFileSuffix = ".log"

	defaultMaxFileSize    = 100 * 1024 * 1024
	defaultRetentionWeeks = 4
	cleanupInterval       = 24 * time.Hour
)

var numberedLogFile = regexp.MustCompile(`^adverse-events-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingWriter is an io.Writer that starts a new file every ISO week and
// whenever the current file would exceed maxFileSize. Files older than the
// retention period are removed once a day.
type RotatingWriter struct {
	dir         string
	retention   time.Duration
	maxFileSize int64
	now         func() time.Time

	mu   sync.Mutex
	file *os.File
	week string
	size int64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRotatingWriter opens the file for the current week in dir, creating
// the directory if needed, and starts the daily cleanup loop.
func NewRotatingWriter(dir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if retentionWeeks <= 0 {
		retentionWeeks = defaultRetentionWeeks
	}
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &RotatingWriter{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	w.mu.Lock()
	err := w.open(weekKey(w.now()), false)
	w.mu.Unlock()
	if err != nil {
		cancel()
		return nil, err
	}

	go w.cleanupLoop(ctx)
	return w, nil
}

// weekKey formats t as YYYY-Www using the ISO week.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// open switches to the file for week. Caller holds mu.
func (w *RotatingWriter) open(week string, full bool) error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
		w.file = nil
	}

	name := w.pickFile(week, full)
	path := filepath.Join(w.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	w.file = f
	w.week = week
	w.size = 0
	if info, err := f.Stat(); err == nil {
		w.size = info.Size()
	}
	return nil
}

// pickFile returns the base file of week while it has room, otherwise the
// highest numbered file with room, otherwise the next number.
func (w *RotatingWriter) pickFile(week string, full bool) string {
	base := logFilePrefix + week + logFileSuffix
	if !full {
		info, err := os.Stat(filepath.Join(w.dir, base))
		if err != nil || info.Size() < w.maxFileSize {
			return base
		}
	}

	matches, _ := filepath.Glob(filepath.Join(w.dir, logFilePrefix+week+"_??"+logFileSuffix))
	highest, highestSize := 0, int64(0)
	for _, m := range matches {
		sub := numberedLogFile.FindStringSubmatch(filepath.Base(m))
		if len(sub) < 2 {
			continue
		}
		n, _ := strconv.Atoi(sub[1])
		if n <= highest {
			continue
		}
		highest = n
		highestSize = 0
		if info, err := os.Stat(m); err == nil {
			highestSize = info.Size()
		}
	}
	if highest > 0 && !full && highestSize < w.maxFileSize {
		return fmt.Sprintf("%s%s_%02d%s", logFilePrefix, week, highest, logFileSuffix)
	}
	return fmt.Sprintf("%s%s_%02d%s", logFilePrefix, week, highest+1, logFileSuffix)
}

// Write appends p to the current file, rotating first when the week changed
// or p would push the file past its size limit.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	week := weekKey(w.now())
	switch {
	case w.week != week:
		if err := w.open(week, false); err != nil {
			return 0, err
		}
	case w.size > 0 && w.size+int64(len(p)) > w.maxFileSize:
		if err := w.open(week, true); err != nil {
			return 0, err
		}
	}
	if w.file == nil {
		return 0, errors.New("no log file available")
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingWriter) cleanupLoop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.cleanup(); err != nil {
				slog.Warn("Failed to clean up old logs", "error", err)
			}
		}
	}
}

// cleanup deletes log files last modified before the retention cutoff.
func (w *RotatingWriter) cleanup() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := w.now().Add(-w.retention)
	deleted := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, logFileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(w.dir, name)) == nil {
			deleted++
		}
	}
	return deleted, nil
}

// Close stops the cleanup loop and closes the current file.
func (w *RotatingWriter) Close() error {
	w.cancel()
	select {
	case <-w.done:
	case <-time.After(time.Second):
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
