package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/nxraw/internal/utils"
	"github.com/pelletier/go-toml/v2"
)

// Config holds everything one publish run needs
type Config struct {
	// NexusURL is the Nexus base URL, e.g. https://nexus.example.com
	NexusURL string `toml:"nexus_url" json:"nexusUrl"`

	// RepoName is the raw repository to publish into
	RepoName string `toml:"repo_name" json:"repoName"`

	// RepoFolder is the folder inside the repository that gets replaced
	RepoFolder string `toml:"repo_folder" json:"repoFolder"`

	// Username and Password are sent as basic auth on every request
	Username string `toml:"username" json:"username"`
	Password string `toml:"password,omitempty" json:"password,omitempty"`

	// InputDir is the local directory mirrored into RepoFolder
	InputDir string `toml:"input_dir" json:"inputDir"`

	// Exclude lists patterns of local paths that are not uploaded
	Exclude []string `toml:"exclude,omitempty" json:"exclude,omitempty"`

	// RequestTimeout bounds each HTTP request, in seconds
	RequestTimeout int `toml:"request_timeout" json:"requestTimeout"`

	// PollInterval is the delay between deletion checks, in milliseconds
	PollInterval int `toml:"poll_interval" json:"pollInterval"`

	// PollTimeout is the deletion wait budget, in seconds
	PollTimeout int `toml:"poll_timeout" json:"pollTimeout"`

	// RateLimit caps requests per second; 0 disables throttling
	RateLimit float64 `toml:"rate_limit" json:"rateLimit"`

	// LogLevel sets the logging verbosity (quiet, normal, verbose, debug)
	LogLevel string `toml:"log_level" json:"logLevel"`

	// LogFile, when set, receives JSON log lines
	LogFile string `toml:"log_file,omitempty" json:"logFile,omitempty"`
}

var validLogLevels = []string{"quiet", "normal", "verbose", "debug"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout: utils.DefaultRequestTimeoutSeconds,
		PollInterval:   int(utils.DefaultPollInterval / time.Millisecond),
		PollTimeout:    int(utils.DefaultPollTimeout / time.Second),
		RateLimit:      0,
		LogLevel:       "normal",
	}
}

// Load builds a configuration from defaults, the TOML file at path and
// NXRAW_ environment variables, in increasing precedence. An empty path
// means ./nxraw.toml, which may be absent. An explicit path must exist.
// The result is neither normalized nor validated: callers apply flag
// overrides first.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = utils.DefaultConfigFileName
	}

	if err := cfg.loadFromFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile merges the TOML file over the current values
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := toml.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return fmt.Errorf("%s: %s", path, strictErr.String())
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() error {
	strs := map[string]*string{
		"NEXUS_URL":   &c.NexusURL,
		"REPO_NAME":   &c.RepoName,
		"REPO_FOLDER": &c.RepoFolder,
		"USERNAME":    &c.Username,
		"PASSWORD":    &c.Password,
		"INPUT_DIR":   &c.InputDir,
		"LOG_LEVEL":   &c.LogLevel,
		"LOG_FILE":    &c.LogFile,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(utils.EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(utils.EnvPrefix + "EXCLUDE"); v != "" {
		c.Exclude = SplitList(v)
	}

	ints := map[string]*int{
		"REQUEST_TIMEOUT": &c.RequestTimeout,
		"POLL_INTERVAL":   &c.PollInterval,
		"POLL_TIMEOUT":    &c.PollTimeout,
	}
	for key, dst := range ints {
		v := os.Getenv(utils.EnvPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %q is not an integer", utils.EnvPrefix, key, v)
		}
		*dst = n
	}

	if v := os.Getenv(utils.EnvPrefix + "RATE_LIMIT"); v != "" {
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %sRATE_LIMIT: %q is not a number", utils.EnvPrefix, v)
		}
		c.RateLimit = rate
	}
	return nil
}

// Normalize trims whitespace and the slashes that would otherwise double
// up when URLs are joined: the base URL loses trailing slashes, the folder
// loses leading and trailing ones.
func (c *Config) Normalize() {
	c.NexusURL = strings.TrimRight(strings.TrimSpace(c.NexusURL), "/")
	c.RepoName = strings.Trim(strings.TrimSpace(c.RepoName), "/")
	c.RepoFolder = strings.Trim(strings.TrimSpace(c.RepoFolder), "/")
	c.Username = strings.TrimSpace(c.Username)
	c.InputDir = strings.TrimSpace(c.InputDir)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.InputDir != "" {
		c.InputDir = filepath.Clean(c.InputDir)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"nexus_url", c.NexusURL},
		{"repo_name", c.RepoName},
		{"repo_folder", c.RepoFolder},
		{"username", c.Username},
		{"password", c.Password},
		{"input_dir", c.InputDir},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	u, err := url.Parse(c.NexusURL)
	if err != nil {
		return fmt.Errorf("invalid nexus_url %q: %w", c.NexusURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid nexus_url %q: scheme must be http or https", c.NexusURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid nexus_url %q: missing host", c.NexusURL)
	}
	if u.User != nil {
		return fmt.Errorf("invalid nexus_url: credentials belong in username/password, not the URL")
	}

	if c.RequestTimeout < 1 || c.RequestTimeout > utils.MaxRequestTimeoutSeconds {
		return fmt.Errorf("request timeout must be between 1 and %d seconds, got: %d", utils.MaxRequestTimeoutSeconds, c.RequestTimeout)
	}
	if c.PollInterval < 100 || c.PollInterval > 60000 {
		return fmt.Errorf("poll interval must be between 100ms and 60000ms, got: %d", c.PollInterval)
	}
	if c.PollTimeout < 1 || c.PollTimeout > 3600 {
		return fmt.Errorf("poll timeout must be between 1 and 3600 seconds, got: %d", c.PollTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative, got: %g", c.RateLimit)
	}

	isValid := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			isValid = true
			break
		}
	}
	if !isValid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Password != "" {
		cp.Password = "********"
	}
	cp.Exclude = append([]string(nil), c.Exclude...)
	return &cp
}

// GetRequestTimeout returns the request timeout as a duration
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetPollInterval returns the deletion poll interval as a duration
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// GetPollTimeout returns the deletion wait budget as a duration
func (c *Config) GetPollTimeout() time.Duration {
	return time.Duration(c.PollTimeout) * time.Second
}

// WriteTemplate writes a starter config file. It refuses to overwrite
// an existing file.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	tmpl := DefaultConfig()
	tmpl.NexusURL = "https://nexus.example.com"
	tmpl.RepoName = "raw-hosted"
	tmpl.RepoFolder = "docs"
	tmpl.Username = "deployer"
	tmpl.InputDir = "build/site"

	data, err := toml.Marshal(tmpl)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := "# nxraw configuration. The password is read from NXRAW_PASSWORD,\n" +
		"# --password or the keyring (nxraw auth login) when omitted here.\n"
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append([]byte(header), data...), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SplitList splits a comma-separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
