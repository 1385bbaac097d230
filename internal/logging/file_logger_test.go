package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFileLogger(t *testing.T, level LogLevel, maxSize int64) (*FileLogger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "nxraw.log")

	logger, err := NewFileLogger(FileLoggerConfig{
		FilePath:      logPath,
		Level:         level,
		MaxFileSize:   maxSize,
		RotateEnabled: maxSize > 0,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	t.Cleanup(func() {
		if err := logger.Close(); err != nil {
			t.Fatalf("Failed to close logger: %v", err)
		}
	})
	return logger, logPath
}

func readEntries(t *testing.T, logPath string) []LogEntry {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse log entry %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestFileLogger_Logging(t *testing.T) {
	logger, logPath := newTestFileLogger(t, DEBUG, 0)

	logger.Debug("scanning input", F("root", "dist"))
	logger.Info("uploading", F("files", 3))
	logger.Warn("empty delete response")
	logger.Error("upload failed", F("retryable", false))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries := readEntries(t, logPath)
	if len(entries) != 4 {
		t.Fatalf("Expected 4 log entries, got %d", len(entries))
	}
	if entries[0].Level != "DEBUG" || entries[0].Message != "scanning input" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Fields["root"] != "dist" {
		t.Errorf("Fields[root] = %v, want dist", entries[0].Fields["root"])
	}
	// JSON numbers decode as float64
	if entries[1].Fields["files"] != float64(3) {
		t.Errorf("Fields[files] = %v, want 3", entries[1].Fields["files"])
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	logger, logPath := newTestFileLogger(t, WARN, 0)

	logger.Debug("filtered")
	logger.Info("filtered")
	logger.Warn("kept")
	logger.Error("kept")
	logger.Close()

	if got := len(readEntries(t, logPath)); got != 2 {
		t.Errorf("Expected 2 log entries, got %d", got)
	}
}

func TestFileLogger_SetLevel(t *testing.T) {
	logger, logPath := newTestFileLogger(t, DEBUG, 0)

	logger.Debug("debug 1")
	logger.SetLevel(ERROR)
	logger.Debug("debug 2")
	logger.Info("info 2")
	logger.Error("error 1")
	logger.Close()

	if got := len(readEntries(t, logPath)); got != 2 {
		t.Errorf("Expected 2 log entries, got %d", got)
	}
}

func TestFileLogger_TraceIDs(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO, 0)

	logger.WithTraceID("trace-123").Info("from trace id")
	ctx := ContextWithTraceID(context.Background(), "ctx-789")
	logger.WithContext(ctx).Info("from context")
	logger.WithContext(context.Background()).Info("no trace")
	logger.Close()

	entries := readEntries(t, logPath)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 log entries, got %d", len(entries))
	}
	want := []string{"trace-123", "ctx-789", ""}
	for i, entry := range entries {
		if entry.TraceID != want[i] {
			t.Errorf("entries[%d].TraceID = %q, want %q", i, entry.TraceID, want[i])
		}
	}
}

func TestFileLogger_RedactsCredentials(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO, 0)

	logger.Info("request sent",
		F("password", "hunter2"),
		F("header", "Authorization: Basic dXNlcjpodW50ZXIy"),
	)
	logger.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	for _, secret := range []string{"hunter2", "dXNlcjpodW50ZXIy"} {
		if strings.Contains(string(data), secret) {
			t.Errorf("log file leaks %q: %s", secret, data)
		}
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO, 100)

	for i := 0; i < 20; i++ {
		logger.Info("uploading a file large enough to rotate the log", F("index", i))
	}
	logger.Close()

	files, err := filepath.Glob(logPath + "*")
	if err != nil {
		t.Fatalf("Failed to glob log files: %v", err)
	}
	if len(files) < 2 {
		t.Errorf("Expected at least 2 log files (original + rotated), got %d", len(files))
	}
}

func TestFileLogger_SharedSinkAfterClose(t *testing.T) {
	logger, _ := newTestFileLogger(t, INFO, 0)
	traced := logger.WithTraceID("trace")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Must not panic once the shared file is closed.
	traced.Info("dropped")
	if err := traced.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
