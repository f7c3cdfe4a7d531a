package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFileSinkConcurrentWrites(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test_sink.log")

	sink, err := NewFileSink(testFile, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to create file sink: %v", err)
	}
	defer sink.Close()

	// Concurrent writes
	var wg sync.WaitGroup
	numGoroutines := 10
	linesPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < linesPerGoroutine; j++ {
				line := fmt.Sprintf("Goroutine %d, Line %d\n", id, j)
				if _, err := sink.Write([]byte(line)); err != nil {
					t.Errorf("Failed to write line: %v", err)
				}
			}
		}(i)
	}

	// Concurrent syncs
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		for i := 0; i < 20; i++ {
			_ = sink.Sync()
			time.Sleep(25 * time.Millisecond)
		}
	}()

	wg.Wait()

	select {
	case <-syncDone:
		// Sync goroutine completed
	case <-time.After(2 * time.Second):
		t.Error("Sync goroutine timeout")
	}

	if err := sink.Sync(); err != nil {
		t.Errorf("Failed final sync: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	gotLines := strings.Count(string(data), "\n")
	expected := numGoroutines * linesPerGoroutine
	if gotLines != expected {
		t.Errorf("Expected %d lines, got %d", expected, gotLines)
	}
}

func TestFileSinkPeriodicFlush(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test_periodic.log")

	// Very short flush interval
	sink, err := NewFileSink(testFile, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to create file sink: %v", err)
	}
	defer sink.Close()

	if _, err := sink.Write([]byte("first line\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	// The periodic flush should land the data without an explicit Sync.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		info, err := os.Stat(testFile)
		if err == nil && info.Size() > 0 {
			return
		}
		time.Sleep(15 * time.Millisecond)
	}
	t.Error("Periodic flush never wrote the buffered data")
}

func TestFileSinkCloseIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(tempDir, "close.log"), time.Second)
	if err != nil {
		t.Fatalf("Failed to create file sink: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}
