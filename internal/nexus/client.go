package nexus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dl-alexandre/nxraw/internal/logging"
	"github.com/dl-alexandre/nxraw/internal/utils"
	"github.com/dl-alexandre/nxraw/pkg/version"
	"golang.org/x/time/rate"
)

// Client talks to one Nexus instance with basic auth
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
	userAgent  string
	nextTID    func() int
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTransport sets the round tripper, e.g. a logging.DebugTransport
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.httpClient.Transport = rt
		}
	}
}

// WithRateLimiter makes every request wait on l first
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTIDSource sets the generator for ExtDirect transaction ids
func WithTIDSource(next func() int) Option {
	return func(c *Client) {
		if next != nil {
			c.nextTID = next
		}
	}
}

// NewClient creates a client for baseURL. Trailing slashes on baseURL are
// dropped.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: time.Duration(utils.DefaultRequestTimeoutSeconds) * time.Second,
		},
		logger:    logging.NewNoOpLogger(),
		userAgent: version.Get().UserAgent(),
		nextTID:   func() int { return int(rand.Int31()) },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ExtDirectURL is the RPC endpoint
func (c *Client) ExtDirectURL() string {
	return c.baseURL + utils.ExtDirectPath
}

// BrowseURL is the HTML listing of folder, with the trailing slash Nexus
// requires
func (c *Client) BrowseURL(repo, folder string) string {
	return c.baseURL + utils.BrowsePath + "/" + escapePath(repo) + "/" + escapePath(folder) + "/"
}

// ObjectURL is the raw content location of key in repo
func (c *Client) ObjectURL(repo, key string) string {
	return c.baseURL + utils.RepositoryPath + "/" + escapePath(repo) + "/" + escapePath(key)
}

// DeleteFolder asks Nexus to delete folder and everything beneath it. The
// response is nil when the body was empty or not JSON.
func (c *Client) DeleteFolder(ctx context.Context, repo, folder string) (*ExtDirectResponse, error) {
	payload, err := json.Marshal(NewDeleteFolderRequest(repo, folder, c.nextTID()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode extdirect request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.ExtDirectURL(), bytes.NewReader(payload), int64(len(payload)), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body := readLimited(resp.Body)
	parsed, ok := parseExtDirectResponse(body)
	if !ok {
		c.logger.Warn("deletion response not JSON",
			logging.F("status", resp.StatusCode),
			logging.F("bytes", len(body)),
		)
		return nil, nil
	}
	return parsed, nil
}

// BrowseFolder probes the folder listing and returns the status code.
// Any status is returned without error; only transport failures error.
func (c *Client) BrowseFolder(ctx context.Context, repo, folder string) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.BrowseURL(repo, folder), nil, 0, "")
	if err != nil {
		return 0, err
	}
	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, nil
}

// PutObject uploads size bytes from body to key in repo
func (c *Client) PutObject(ctx context.Context, repo, key string, body io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = utils.DefaultContentType
	}
	resp, err := c.do(ctx, http.MethodPut, c.ObjectURL(repo, key), body, size, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return nil
}

// do sends a request and converts non-2xx responses into *StatusError
func (c *Client) do(ctx context.Context, method, target string, body io.Reader, size int64, contentType string) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, target, body, size, contentType)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       readLimited(resp.Body),
		}
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader, size int64, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	if body != nil {
		req.ContentLength = size
		if size == 0 {
			req.Body = http.NoBody
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.SetBasicAuth(c.username, c.password)
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("nexus request failed",
			logging.F("method", req.Method),
			logging.F("url", req.URL.String()),
			logging.F("error", err.Error()),
		)
		return nil, err
	}
	c.logger.Debug("nexus request",
		logging.F("method", req.Method),
		logging.F("url", req.URL.String()),
		logging.F("status", resp.StatusCode),
		logging.F("duration_ms", time.Since(start).Milliseconds()),
	)
	return resp, nil
}

// escapePath escapes each segment of a slash-separated path
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
