// Package logger provides a line-count bounded writer for session log files.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogRotator wraps an io.Writer and keeps the backing file at a bounded
// number of lines, rewriting it in place once twice the limit has passed
// through.
type LogRotator struct {
	writer    io.Writer
	filePath  string
	lines     []string
	capacity  int
	head      int
	size      int
	totalSeen int
	mu        sync.Mutex
}

// NewLogRotator creates a new LogRotator.
func NewLogRotator(writer io.Writer, maxLines int, filePath string) *LogRotator {
	return &LogRotator{
		writer:   writer,
		filePath: filePath,
		lines:    make([]string, maxLines),
		capacity: maxLines,
	}
}

// Write implements io.Writer and maintains the line buffer.
func (w *LogRotator) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Write to the underlying writer first
	n, err = w.writer.Write(p)
	if err != nil {
		return n, err
	}

	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}

		w.push(line)

		// Waiting for twice the capacity keeps rewrites infrequent while
		// still bounding the file size.
		if w.totalSeen == w.capacity*2 {
			if err := w.rotate(); err != nil {
				return n, fmt.Errorf("failed to rotate log file: %w", err)
			}

			w.totalSeen = w.size
		}
	}

	return n, nil
}

// push records a line in the circular buffer.
func (w *LogRotator) push(line string) {
	w.lines[w.head] = line
	w.head = (w.head + 1) % w.capacity

	if w.size < w.capacity {
		w.size++
	}

	w.totalSeen++
}

// recent returns the buffered lines in chronological order.
func (w *LogRotator) recent() []string {
	if w.size == 0 {
		return nil
	}

	result := make([]string, w.size)
	start := (w.head - w.size + w.capacity) % w.capacity

	for i := range w.size {
		result[i] = w.lines[(start+i)%w.capacity]
	}

	return result
}

// rotate rewrites the backing file with only the buffered lines.
func (w *LogRotator) rotate() error {
	lines := w.recent()
	if len(lines) == 0 {
		return nil
	}

	// Write the replacement beside the original so a crash mid-rotation
	// never loses the live file.
	temp, err := os.CreateTemp(filepath.Dir(w.filePath), "temp-log-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()

	if _, err := temp.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	temp.Close()

	if closer, ok := w.writer.(io.Closer); ok {
		closer.Close()
	}

	os.Remove(w.filePath)

	if err := os.Rename(tempPath, w.filePath); err != nil {
		return err
	}

	newFile, err := os.OpenFile(w.filePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w.writer = newFile

	return nil
}
