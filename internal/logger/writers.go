// internal/logger/writers.go
package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSink is a thread-safe buffered file writer with periodic flush. It
// implements zapcore.WriteSyncer, so it plugs directly into a zap core.
type FileSink struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	file     *os.File
	ticker   *time.Ticker
	done     chan struct{}
	closed   bool
	filePath string
}

// NewFileSink opens (or creates) the log file in append mode and starts the
// periodic flush goroutine.
func NewFileSink(filePath string, flushInterval time.Duration) (*FileSink, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	fs := &FileSink{
		writer:   bufio.NewWriter(file),
		file:     file,
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
		filePath: filePath,
	}

	go fs.periodicFlush()

	return fs, nil
}

// Write writes data to the file in a thread-safe manner.
func (fs *FileSink) Write(data []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.writer.Write(data)
	if err != nil {
		return n, fmt.Errorf("failed to write data: %w", err)
	}
	return n, nil
}

// Sync forces a write of any buffered data.
func (fs *FileSink) Sync() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.flushLocked()
}

func (fs *FileSink) flushLocked() error {
	if err := fs.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	return nil
}

// periodicFlush runs in a goroutine to periodically flush the buffer.
func (fs *FileSink) periodicFlush() {
	for {
		select {
		case <-fs.ticker.C:
			_ = fs.Sync()
		case <-fs.done:
			return
		}
	}
}

// Close stops the flush goroutine and closes the file.
func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil
	}
	fs.closed = true

	close(fs.done)
	fs.ticker.Stop()

	if err := fs.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := fs.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
