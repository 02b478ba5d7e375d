package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const filePrefix = "interactions-"

var numberedFileRegex = regexp.MustCompile(`^interactions-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingWriter writes to one log file per ISO week, starting a numbered
// file when the current one reaches maxFileSize. Files older than the
// retention period are removed once a day.
type RotatingWriter struct {
	dir         string
	retention   time.Duration
	maxFileSize int64

	mu      sync.Mutex
	file    *os.File
	week    string
	size    int64
	now     func() time.Time
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewRotatingWriter creates the log directory and opens the file for the current week
func NewRotatingWriter(dir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rw := &RotatingWriter{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
		cancel:      cancel,
		stopped:     make(chan struct{}),
	}

	rw.mu.Lock()
	err := rw.rotate(weekKey(rw.now()), false)
	rw.mu.Unlock()
	if err != nil {
		cancel()
		return nil, err
	}

	go rw.cleanupLoop(ctx)

	return rw, nil
}

// weekKey returns the ISO week as YYYY-Www
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write implements io.Writer
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	week := weekKey(rw.now())
	switch {
	case week != rw.week:
		if err := rw.rotate(week, false); err != nil {
			return 0, err
		}
	case rw.maxFileSize > 0 && rw.size+int64(len(p)) > rw.maxFileSize:
		if err := rw.rotate(week, true); err != nil {
			return 0, err
		}
	}

	if rw.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// rotate opens the file to write to for week (caller holds mu)
func (rw *RotatingWriter) rotate(week string, full bool) error {
	if rw.file != nil {
		if err := rw.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
		rw.file = nil
	}

	name := rw.pickFile(week, full)
	path := filepath.Join(rw.dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rw.file = file
	rw.week = week
	rw.size = 0
	if info, err := file.Stat(); err == nil {
		rw.size = info.Size()
	}

	return nil
}

// pickFile returns the base week file while it has room, otherwise the highest
// numbered file with room, otherwise the next numbered file.
func (rw *RotatingWriter) pickFile(week string, full bool) string {
	base := fmt.Sprintf("%s%s.log", filePrefix, week)

	if !full {
		info, err := os.Stat(filepath.Join(rw.dir, base))
		if err != nil || rw.maxFileSize == 0 || info.Size() < rw.maxFileSize {
			return base
		}
	}

	highest := 0
	var highestSize int64
	matches, _ := filepath.Glob(filepath.Join(rw.dir, fmt.Sprintf("%s%s_??.log", filePrefix, week)))
	for _, match := range matches {
		m := numberedFileRegex.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num > highest {
			highest = num
			highestSize = 0
			if info, err := os.Stat(match); err == nil {
				highestSize = info.Size()
			}
		}
	}

	if highest > 0 && highestSize < rw.maxFileSize && !full {
		return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, highest)
	}

	return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, highest+1)
}

func (rw *RotatingWriter) cleanupLoop(ctx context.Context) {
	defer close(rw.stopped)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rw.cleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to clean up old logs: %v\n", err)
			}
		}
	}
}

// cleanup removes log files last modified before the retention cutoff
func (rw *RotatingWriter) cleanup() (int, error) {
	entries, err := os.ReadDir(rw.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := rw.now().Add(-rw.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rw.dir, name)); err == nil {
				deleted++
			}
		}
	}

	return deleted, nil
}

// Close stops the cleanup goroutine and closes the current file
func (rw *RotatingWriter) Close() error {
	rw.cancel()

	select {
	case <-rw.stopped:
	case <-time.After(time.Second):
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file != nil {
		err := rw.file.Close()
		rw.file = nil
		return err
	}
	return nil
}
