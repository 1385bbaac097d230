package logging

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()

	if config.Level != INFO {
		t.Errorf("Expected Level=INFO, got %v", config.Level)
	}
	if !config.EnableConsole {
		t.Error("Expected EnableConsole=true")
	}
	if !config.RedactSensitive {
		t.Error("Expected RedactSensitive=true")
	}
	if config.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected MaxFileSize=104857600, got %v", config.MaxFileSize)
	}
}

func TestNewLogger_Selection(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nxraw.log")

	tests := []struct {
		name    string
		config  LogConfig
		wantTyp string
	}{
		{"console only", LogConfig{Level: INFO, EnableConsole: true}, "*logging.ConsoleLogger"},
		{"file only", LogConfig{Level: INFO, OutputFile: logPath}, "*logging.FileLogger"},
		{"both", LogConfig{Level: INFO, EnableConsole: true, OutputFile: logPath}, "*logging.MultiLogger"},
		{"neither", LogConfig{Level: INFO}, "*logging.NoOpLogger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			t.Cleanup(func() { logger.Close() })

			got := fmt.Sprintf("%T", logger)
			if got != tt.wantTyp {
				t.Errorf("NewLogger() type = %T, want %s", logger, tt.wantTyp)
			}
		})
	}
}

func TestNewLogger_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist", "nxraw.log")

	if _, err := NewLogger(LogConfig{Level: INFO, OutputFile: missing}); err == nil {
		t.Error("Expected error for missing log directory, got nil")
	}
}

func TestNewDebugLoggerWithTransport(t *testing.T) {
	logger, transport, err := NewDebugLoggerWithTransport(LogConfig{Level: INFO, EnableConsole: true})
	if err != nil {
		t.Fatalf("NewDebugLoggerWithTransport() error = %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	if transport != nil {
		t.Error("Expected nil DebugTransport when EnableDebug=false")
	}

	logger, transport, err = NewDebugLoggerWithTransport(LogConfig{Level: INFO, EnableDebug: true})
	if err != nil {
		t.Fatalf("NewDebugLoggerWithTransport() error = %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	if transport == nil {
		t.Fatal("DebugTransport is nil with EnableDebug=true")
	}
}

func TestDebugTransport_LogsWithoutCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{Writer: &buf, Level: DEBUG})
	client := &http.Client{Transport: NewDebugTransport(nil, logger)}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/service/rest/repository/browse/r/d/", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.SetBasicAuth("admin", "admin123")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "status=404") {
		t.Errorf("response status not logged: %q", out)
	}
	if !strings.Contains(out, "authenticated=true") {
		t.Errorf("auth presence not logged: %q", out)
	}
	if strings.Contains(out, "YWRtaW46YWRtaW4xMjM") {
		t.Errorf("credentials leaked: %q", out)
	}
}
