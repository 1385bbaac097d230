package nexus

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dl-alexandre/nxraw/internal/utils"
)

// StatusError reports a response outside the 2xx range
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// StatusCodeOf returns the HTTP status carried by err, or 0 when err did
// not come from a response
func StatusCodeOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// readLimited reads at most utils.MaxErrorBodyBytes of r
func readLimited(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, utils.MaxErrorBodyBytes))
	return string(data)
}
