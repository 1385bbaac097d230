package cli

import (
	"fmt"
	"strings"

	"github.com/dl-alexandre/nxraw/internal/config"
	"github.com/dl-alexandre/nxraw/internal/types"
	"github.com/dl-alexandre/nxraw/internal/utils"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Commands for inspecting and creating nxraw configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  "Display the configuration after merging defaults, the config file and NXRAW_* variables. The password is redacted.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file",
	Long:  "Write a template nxraw.toml (or the given path). Existing files are never overwritten.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// configView renders a configuration as key/value rows
type configView struct {
	*config.Config
}

func (v configView) Headers() []string {
	return []string{"Key", "Value"}
}

func (v configView) Rows() [][]string {
	c := v.Config
	return [][]string{
		{"nexus_url", c.NexusURL},
		{"repo_name", c.RepoName},
		{"repo_folder", c.RepoFolder},
		{"username", c.Username},
		{"password", c.Password},
		{"input_dir", c.InputDir},
		{"exclude", strings.Join(c.Exclude, ", ")},
		{"request_timeout", fmt.Sprintf("%ds", c.RequestTimeout)},
		{"poll_interval", fmt.Sprintf("%dms", c.PollInterval)},
		{"poll_timeout", fmt.Sprintf("%ds", c.PollTimeout)},
		{"rate_limit", fmt.Sprintf("%g/s", c.RateLimit)},
		{"log_level", c.LogLevel},
		{"log_file", c.LogFile},
	}
}

func (v configView) EmptyMessage() string {
	return "No configuration"
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg, err := loadConfig(cmd.Flags(), flags.Config)
	if err != nil {
		return out.WriteError("config.show", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}
	if err := cfg.Validate(); err != nil {
		out.AddWarning(utils.ErrCodeInvalidConfig, err.Error(), "warning")
	}

	redacted := cfg.Redacted()
	if flags.OutputFormat == types.OutputFormatTable {
		return out.WriteSuccess("config.show", configView{redacted})
	}
	return out.WriteSuccess("config.show", redacted)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	path := utils.DefaultConfigFileName
	if len(args) == 1 {
		path = args[0]
	}

	if err := config.WriteTemplate(path); err != nil {
		return out.WriteError("config.init", utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).
			WithContext("path", path).
			Build())
	}

	out.Log("Wrote %s", path)
	return out.WriteSuccess("config.init", map[string]string{"path": path})
}
