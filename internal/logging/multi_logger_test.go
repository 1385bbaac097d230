package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func plainConsole(buf *bytes.Buffer, level LogLevel) *ConsoleLogger {
	return NewConsoleLogger(ConsoleLoggerConfig{
		Writer:          buf,
		Level:           level,
		RedactSensitive: true,
	})
}

func TestMultiLogger_LogsToAll(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	multi := NewMultiLogger(plainConsole(&buf1, INFO), plainConsole(&buf2, INFO))

	multi.Info("uploaded", F("path", "index.html"))

	if buf1.String() == "" || buf2.String() == "" {
		t.Fatal("a logger didn't receive the message")
	}
	if buf1.String() != buf2.String() {
		t.Errorf("Loggers produced different output:\n%s\n%s", buf1.String(), buf2.String())
	}
}

func TestMultiLogger_TraceID(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiLogger(plainConsole(&buf, INFO))

	multi.WithTraceID("0123456789abcdef").Info("with trace")
	ctx := ContextWithTraceID(context.Background(), "fedcba9876543210")
	multi.WithContext(ctx).Info("with context")

	out := buf.String()
	if !strings.Contains(out, "[01234567]") {
		t.Errorf("missing trace prefix in %q", out)
	}
	if !strings.Contains(out, "[fedcba98]") {
		t.Errorf("missing context trace prefix in %q", out)
	}
}

func TestMultiLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiLogger(plainConsole(&buf, DEBUG))

	multi.Debug("debug 1")
	multi.SetLevel(ERROR)
	multi.Debug("debug 2")
	multi.Info("info 2")
	multi.Error("error 1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
}

func TestMultiLogger_FileAndConsole(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nxraw.log")

	fileLogger, err := NewFileLogger(FileLoggerConfig{FilePath: logPath, Level: INFO})
	if err != nil {
		t.Fatalf("Failed to create file logger: %v", err)
	}
	var buf bytes.Buffer
	multi := NewMultiLogger(fileLogger, plainConsole(&buf, INFO))

	multi.Info("publish complete", F("files", 2))
	if err := multi.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if buf.String() == "" {
		t.Error("Console didn't receive message")
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("Log file is empty")
	}
}
