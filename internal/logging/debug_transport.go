package logging

import (
	"net/http"
	"time"
)

// DebugTransport logs method, URL, status and latency of each request.
// Header values are never logged; only the presence of Authorization is.
type DebugTransport struct {
	next   http.RoundTripper
	logger Logger
}

func NewDebugTransport(next http.RoundTripper, logger Logger) *DebugTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &DebugTransport{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper
func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := t.logger.WithContext(req.Context())
	logger.Debug("HTTP request",
		F("method", req.Method),
		F("url", req.URL.Redacted()),
		F("contentType", req.Header.Get("Content-Type")),
		F("contentLength", req.ContentLength),
		F("authenticated", req.Header.Get("Authorization") != ""),
	)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		logger.Debug("HTTP request failed",
			F("method", req.Method),
			F("url", req.URL.Redacted()),
			F("duration_ms", duration.Milliseconds()),
			F("error", err.Error()),
		)
		return nil, err
	}

	logger.Debug("HTTP response",
		F("method", req.Method),
		F("url", req.URL.Redacted()),
		F("status", resp.StatusCode),
		F("duration_ms", duration.Milliseconds()),
	)
	return resp, nil
}
