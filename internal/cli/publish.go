package cli

import (
	"errors"

	"github.com/dl-alexandre/nxraw/internal/auth"
	"github.com/dl-alexandre/nxraw/internal/config"
	nxerrors "github.com/dl-alexandre/nxraw/internal/errors"
	"github.com/dl-alexandre/nxraw/internal/exclude"
	"github.com/dl-alexandre/nxraw/internal/logging"
	"github.com/dl-alexandre/nxraw/internal/nexus"
	"github.com/dl-alexandre/nxraw/internal/publish"
	"github.com/dl-alexandre/nxraw/internal/scanner"
	"github.com/dl-alexandre/nxraw/internal/types"
	"github.com/dl-alexandre/nxraw/internal/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Replace a remote folder with a local directory",
	Long: `Delete the configured folder of a Nexus raw repository, wait until Nexus
reports it gone, then upload every regular file under the input directory.

Settings come from nxraw.toml, NXRAW_* environment variables and flags, in
increasing precedence. Without a password, the one stored by
'nxraw auth login' for the same server and user is used.`,
	Example: `  nxraw publish --nexus-url https://nexus.example.com --repo raw-hosted \
    --folder docs --username deployer --input-dir build/site
  nxraw publish --dry-run --output table`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

var publishOverrides struct {
	nexusURL       string
	repo           string
	folder         string
	username       string
	password       string
	inputDir       string
	exclude        []string
	requestTimeout int
	pollInterval   int
	pollTimeout    int
	rateLimit      float64
}

func init() {
	f := publishCmd.Flags()
	f.StringVar(&publishOverrides.nexusURL, "nexus-url", "", "Nexus base URL")
	f.StringVar(&publishOverrides.repo, "repo", "", "Raw repository name")
	f.StringVar(&publishOverrides.folder, "folder", "", "Folder inside the repository to replace")
	f.StringVar(&publishOverrides.username, "username", "", "Nexus username")
	f.StringVar(&publishOverrides.password, "password", "", "Nexus password (prefer NXRAW_PASSWORD or 'auth login')")
	f.StringVar(&publishOverrides.inputDir, "input-dir", "", "Local directory to publish")
	f.StringSliceVar(&publishOverrides.exclude, "exclude", nil, "Patterns of local paths to skip (repeatable)")
	f.IntVar(&publishOverrides.requestTimeout, "request-timeout", utils.DefaultRequestTimeoutSeconds, "Per-request timeout in seconds")
	f.IntVar(&publishOverrides.pollInterval, "poll-interval", 1000, "Delay between deletion checks in milliseconds")
	f.IntVar(&publishOverrides.pollTimeout, "poll-timeout", 30, "How long to wait for the deletion, in seconds")
	f.Float64Var(&publishOverrides.rateLimit, "rate-limit", 0, "Maximum requests per second (0 = unlimited)")

	rootCmd.AddCommand(publishCmd)
}

// loadConfig reads file and environment settings, then applies the flags
// the user actually set
func loadConfig(flagSet *pflag.FlagSet, configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	o := publishOverrides
	strs := map[string]struct {
		dst *string
		val string
	}{
		"nexus-url": {&cfg.NexusURL, o.nexusURL},
		"repo":      {&cfg.RepoName, o.repo},
		"folder":    {&cfg.RepoFolder, o.folder},
		"username":  {&cfg.Username, o.username},
		"password":  {&cfg.Password, o.password},
		"input-dir": {&cfg.InputDir, o.inputDir},
	}
	for name, s := range strs {
		if flagSet.Lookup(name) != nil && flagSet.Changed(name) {
			*s.dst = s.val
		}
	}
	if flagSet.Lookup("exclude") != nil && flagSet.Changed("exclude") {
		cfg.Exclude = o.exclude
	}
	if flagSet.Lookup("request-timeout") != nil && flagSet.Changed("request-timeout") {
		cfg.RequestTimeout = o.requestTimeout
	}
	if flagSet.Lookup("poll-interval") != nil && flagSet.Changed("poll-interval") {
		cfg.PollInterval = o.pollInterval
	}
	if flagSet.Lookup("poll-timeout") != nil && flagSet.Changed("poll-timeout") {
		cfg.PollTimeout = o.pollTimeout
	}
	if flagSet.Lookup("rate-limit") != nil && flagSet.Changed("rate-limit") {
		cfg.RateLimit = o.rateLimit
	}
	if globalFlags.Verbose {
		cfg.LogLevel = "verbose"
	}
	if globalFlags.Debug {
		cfg.LogLevel = "debug"
	}

	cfg.Normalize()
	return cfg, nil
}

// resolvePassword fills in a stored password when none was configured.
// The credential store is only opened when it is needed, never for a dry run.
func resolvePassword(cfg *config.Config, dryRun bool, newManager func() *auth.Manager) error {
	if dryRun || cfg.Password != "" || cfg.NexusURL == "" || cfg.Username == "" {
		return nil
	}
	password, err := newManager().LoadPassword(cfg.NexusURL, cfg.Username)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil
		}
		return err
	}
	cfg.Password = password
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg, err := loadConfig(cmd.Flags(), flags.Config)
	if err != nil {
		return out.WriteError("publish", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}

	if err := resolvePassword(cfg, flags.DryRun, newAuthManager); err != nil {
		out.AddWarning(utils.ErrCodeKeyringUnavailable, err.Error(), "warning")
	}

	if cfg.Password == "" && !flags.DryRun {
		return out.WriteError("publish", utils.NewCLIError(utils.ErrCodeAuthRequired,
			"No password configured. Set NXRAW_PASSWORD, pass --password or run 'nxraw auth login'").
			WithContext("nexusUrl", cfg.NexusURL).
			WithContext("username", cfg.Username).
			Build())
	}

	check := *cfg
	if flags.DryRun && check.Password == "" {
		check.Password = "unused"
	}
	if err := check.Validate(); err != nil {
		return out.WriteError("publish", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}

	matcher, err := exclude.New(cfg.Exclude)
	if err != nil {
		return out.WriteError("publish", utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build())
	}

	traceID := uuid.New().String()
	out.SetTraceID(traceID)
	ctx := logging.ContextWithTraceID(cmd.Context(), traceID)
	runLogger := GetLogger().WithContext(ctx)
	if !flags.Verbose && !flags.Debug {
		runLogger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}

	clientOpts := []nexus.Option{
		nexus.WithTimeout(cfg.GetRequestTimeout()),
		nexus.WithLogger(runLogger),
	}
	if cfg.RateLimit > 0 {
		clientOpts = append(clientOpts, nexus.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)))
	}
	if debugTransport != nil {
		clientOpts = append(clientOpts, nexus.WithTransport(debugTransport))
	}
	client := nexus.NewClient(cfg.NexusURL, cfg.Username, cfg.Password, clientOpts...)

	pub := publish.New(publish.Target{
		RepoName:   cfg.RepoName,
		RepoFolder: cfg.RepoFolder,
		InputDir:   cfg.InputDir,
	}, client, publish.Options{
		PollInterval: cfg.GetPollInterval(),
		PollTimeout:  cfg.GetPollTimeout(),
		DryRun:       flags.DryRun,
		Exclude:      matcher,
		Logger:       runLogger,
		Progress: func(index, total int, file scanner.LocalFile) {
			out.Log("[%d/%d] %s", index, total, file.RelativePath)
		},
	})

	result, err := pub.Run(ctx)
	if err != nil {
		return out.WriteError("publish", publishErrorToCLI(err, result))
	}

	if flags.DryRun {
		out.Log("Dry run: %d files (%s) would be published to %s", len(result.Files), utils.FormatSize(result.TotalBytes), client.ObjectURL(cfg.RepoName, cfg.RepoFolder))
	} else {
		out.Log("Published %d files (%s) to %s", result.Uploaded(), utils.FormatSize(result.TotalBytes), client.ObjectURL(cfg.RepoName, cfg.RepoFolder))
	}
	return out.WriteSuccess("publish", result)
}

// publishErrorToCLI maps a run failure onto the stable error codes
func publishErrorToCLI(err error, result *publish.Result) types.CLIError {
	var pubErr *publish.Error
	if !errors.As(err, &pubErr) {
		return utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build()
	}

	code := utils.ErrCodeUnknown
	retryable := false
	switch pubErr.Kind {
	case publish.KindScanFailed:
		code = utils.ErrCodeScanFailed
	case publish.KindDeletionFailed:
		code = utils.ErrCodeDeletionFailed
	case publish.KindDeletionCheckFailed:
		code = utils.ErrCodeDeletionCheckFailed
	case publish.KindDeletionTimeout:
		code = utils.ErrCodeDeletionTimeout
		retryable = true
	case publish.KindUploadFailed:
		code = utils.ErrCodeUploadFailed
	case publish.KindCancelled:
		code = utils.ErrCodeCancelled
	}
	if pubErr.StatusCode == 0 && pubErr.Err != nil && pubErr.Kind != publish.KindScanFailed && pubErr.Kind != publish.KindCancelled {
		retryable = true
	}
	if nxerrors.RetryableStatus(pubErr.StatusCode) {
		retryable = true
	}

	b := utils.NewCLIError(code, pubErr.Error()).
		WithHTTPStatus(pubErr.StatusCode).
		WithRetryable(retryable)
	if pubErr.Path != "" {
		b = b.WithContext("path", pubErr.Path)
	}
	if hint := nxerrors.StatusHint(pubErr.StatusCode); hint != "" {
		b = b.WithContext("hint", hint)
	}
	if result != nil {
		b = b.WithContext("state", string(result.State)).
			WithContext("uploaded", result.Uploaded()).
			WithContext("pollAttempts", result.PollAttempts)
	}
	return b.Build()
}
