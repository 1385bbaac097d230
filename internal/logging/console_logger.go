package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

// consoleSink is shared by a logger and every logger derived from it,
// so lines from different trace IDs never interleave mid-write.
type consoleSink struct {
	mu     sync.Mutex
	writer io.Writer
}

// ConsoleLogger implements Logger interface for console output
type ConsoleLogger struct {
	sink             *consoleSink
	level            LogLevel
	traceID          string
	colorEnabled     bool
	timestampEnabled bool
	redactSensitive  bool
}

// ConsoleLoggerConfig contains configuration for console logger
type ConsoleLoggerConfig struct {
	Writer           io.Writer
	Level            LogLevel
	ColorEnabled     bool
	TimestampEnabled bool
	RedactSensitive  bool
}

// NewConsoleLogger creates a new console logger
func NewConsoleLogger(config ConsoleLoggerConfig) *ConsoleLogger {
	if config.Writer == nil {
		config.Writer = os.Stderr
	}

	return &ConsoleLogger{
		sink:             &consoleSink{writer: config.Writer},
		level:            config.Level,
		colorEnabled:     config.ColorEnabled,
		timestampEnabled: config.TimestampEnabled,
		redactSensitive:  config.RedactSensitive,
	}
}

// Patterns for sensitive data redaction
var (
	// Authorization headers, any scheme
	authHeaderPattern = regexp.MustCompile(`(?i)authorization["']?\s*[:=]\s*["']?(basic|bearer)?\s*[^\s"',]+`)
	// Bare basic credentials
	basicAuthPattern = regexp.MustCompile(`(?i)\bBasic\s+[A-Za-z0-9+/]+=*`)
	// password=..., "password": "..."
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|secret)["']?\s*[:=]\s*["']?[^\s"',&]+`)
	// user:pass@ in URLs
	urlCredentialPattern = regexp.MustCompile(`(https?://)[^/\s:@]+:[^/\s@]+@`)
)

// redactSensitiveData redacts credentials from log messages
func redactSensitiveData(s string) string {
	s = authHeaderPattern.ReplaceAllString(s, "Authorization: [REDACTED]")
	s = basicAuthPattern.ReplaceAllString(s, "Basic [REDACTED]")
	s = passwordPattern.ReplaceAllString(s, "$1=[REDACTED]")
	s = urlCredentialPattern.ReplaceAllString(s, "${1}[REDACTED]@")
	return s
}

// isSensitiveKey reports whether a field value must never be printed
func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	return k == "password" || k == "authorization" || strings.HasSuffix(k, "secret")
}

// formatMessage formats a log message with colors and fields
func (l *ConsoleLogger) formatMessage(level LogLevel, msg string, fields ...Field) string {
	var sb strings.Builder

	if l.timestampEnabled {
		l.colored(&sb, colorGray, time.Now().Format("2006-01-02 15:04:05")+" ")
	}

	levelColor := colorReset
	switch level {
	case DEBUG:
		levelColor = colorBlue
	case WARN:
		levelColor = colorYellow
	case ERROR:
		levelColor = colorRed
	}
	l.colored(&sb, levelColor, fmt.Sprintf("%-5s", level.String()))
	sb.WriteString(" ")

	if l.traceID != "" {
		short := l.traceID
		if len(short) > 8 {
			short = short[:8]
		}
		l.colored(&sb, colorGray, fmt.Sprintf("[%s] ", short))
	}

	if l.redactSensitive {
		msg = redactSensitiveData(msg)
	}
	sb.WriteString(msg)

	if len(fields) > 0 {
		sb.WriteString(" ")
		for i, field := range fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			value := fmt.Sprintf("%v", field.Value)
			if l.redactSensitive {
				if isSensitiveKey(field.Key) {
					value = "[REDACTED]"
				} else {
					value = redactSensitiveData(value)
				}
			}
			sb.WriteString(field.Key)
			sb.WriteString("=")
			sb.WriteString(value)
		}
	}

	return sb.String()
}

func (l *ConsoleLogger) colored(sb *strings.Builder, color, text string) {
	if !l.colorEnabled {
		sb.WriteString(text)
		return
	}
	sb.WriteString(color)
	sb.WriteString(text)
	sb.WriteString(colorReset)
}

// log writes a log message to the console
func (l *ConsoleLogger) log(level LogLevel, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	formatted := l.formatMessage(level, msg, fields...)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = fmt.Fprintln(l.sink.writer, formatted)
}

// Debug logs a debug-level message
func (l *ConsoleLogger) Debug(msg string, fields ...Field) {
	l.log(DEBUG, msg, fields...)
}

// Info logs an info-level message
func (l *ConsoleLogger) Info(msg string, fields ...Field) {
	l.log(INFO, msg, fields...)
}

// Warn logs a warning-level message
func (l *ConsoleLogger) Warn(msg string, fields ...Field) {
	l.log(WARN, msg, fields...)
}

// Error logs an error-level message
func (l *ConsoleLogger) Error(msg string, fields ...Field) {
	l.log(ERROR, msg, fields...)
}

// WithTraceID returns a new logger with the trace ID set
func (l *ConsoleLogger) WithTraceID(traceID string) Logger {
	derived := *l
	derived.traceID = traceID
	return &derived
}

// WithContext returns a new logger that extracts trace ID from context
func (l *ConsoleLogger) WithContext(ctx context.Context) Logger {
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		return l
	}
	return l.WithTraceID(traceID)
}

// SetLevel sets the minimum log level
func (l *ConsoleLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.level = level
}

// Close closes the logger (no-op for console logger)
func (l *ConsoleLogger) Close() error {
	return nil
}
