package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dl-alexandre/nxraw/internal/auth"
	"github.com/dl-alexandre/nxraw/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Credential commands",
	Long:  "Store, inspect and remove Nexus passwords in the system keyring",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a Nexus password",
	Long: `Store the password for a Nexus server and user. The password is read from
--password, or from standard input (without echo on a terminal).`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove a stored password",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a password is stored",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authForceFile bool

func init() {
	for _, c := range []*cobra.Command{authLoginCmd, authLogoutCmd, authStatusCmd} {
		c.Flags().StringVar(&publishOverrides.nexusURL, "nexus-url", "", "Nexus base URL")
		c.Flags().StringVar(&publishOverrides.username, "username", "", "Nexus username")
		c.Flags().BoolVar(&authForceFile, "file-storage", false, "Use encrypted file storage instead of the system keyring")
	}
	authLoginCmd.Flags().StringVar(&publishOverrides.password, "password", "", "Password to store (read from stdin when omitted)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

// AuthStatus is the result of auth commands
type AuthStatus struct {
	NexusURL string `json:"nexusUrl"`
	Username string `json:"username"`
	Stored   bool   `json:"stored"`
	Backend  string `json:"backend"`
}

func (s *AuthStatus) Headers() []string {
	return []string{"Nexus URL", "Username", "Stored", "Backend"}
}

func (s *AuthStatus) Rows() [][]string {
	return [][]string{{s.NexusURL, s.Username, fmt.Sprintf("%t", s.Stored), s.Backend}}
}

func (s *AuthStatus) EmptyMessage() string {
	return "No credentials"
}

func newAuthManager() *auth.Manager {
	return auth.NewManagerWithOptions(auth.DefaultConfigDir(), auth.ManagerOptions{ForceEncryptedFile: authForceFile})
}

// authTarget resolves the server and user from flags, env and config file
func authTarget(cmd *cobra.Command, out *OutputWriter, command string) (string, string, error) {
	cfg, err := loadConfig(cmd.Flags(), GetGlobalFlags().Config)
	if err != nil {
		return "", "", out.WriteError(command, utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}
	if cfg.NexusURL == "" || cfg.Username == "" {
		return "", "", out.WriteError(command, utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"--nexus-url and --username are required (or set them in nxraw.toml / NXRAW_*)").Build())
	}
	return cfg.NexusURL, cfg.Username, nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	nexusURL, username, err := authTarget(cmd, out, "auth.login")
	if err != nil {
		return err
	}

	password := publishOverrides.password
	if !cmd.Flags().Changed("password") {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintf(os.Stderr, "Password for %s at %s: ", username, nexusURL)
		}
		password, err = readPassword(os.Stdin)
		if err != nil {
			return out.WriteError("auth.login", utils.NewCLIError(utils.ErrCodeInvalidArgument,
				"failed to read password: "+err.Error()).Build())
		}
	}

	mgr := newAuthManager()
	if warning := mgr.GetStorageWarning(); warning != "" {
		out.Log("%s", warning)
	}
	if err := mgr.SavePassword(nexusURL, username, password); err != nil {
		return out.WriteError("auth.login", utils.NewCLIError(utils.ErrCodeKeyringUnavailable, err.Error()).Build())
	}

	out.Log("Stored password for %s at %s", username, nexusURL)
	return out.WriteSuccess("auth.login", &AuthStatus{
		NexusURL: nexusURL,
		Username: username,
		Stored:   true,
		Backend:  mgr.GetStorageBackend(),
	})
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	nexusURL, username, err := authTarget(cmd, out, "auth.logout")
	if err != nil {
		return err
	}

	mgr := newAuthManager()
	err = mgr.DeletePassword(nexusURL, username)
	if err != nil && !errors.Is(err, auth.ErrNotFound) {
		return out.WriteError("auth.logout", utils.NewCLIError(utils.ErrCodeKeyringUnavailable, err.Error()).Build())
	}
	if errors.Is(err, auth.ErrNotFound) {
		out.AddWarning("NOT_STORED", "no password was stored for "+username+" at "+nexusURL, "info")
	}

	return out.WriteSuccess("auth.logout", &AuthStatus{
		NexusURL: nexusURL,
		Username: username,
		Stored:   false,
		Backend:  mgr.GetStorageBackend(),
	})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	nexusURL, username, err := authTarget(cmd, out, "auth.status")
	if err != nil {
		return err
	}

	mgr := newAuthManager()
	_, err = mgr.LoadPassword(nexusURL, username)
	if err != nil && !errors.Is(err, auth.ErrNotFound) {
		return out.WriteError("auth.status", utils.NewCLIError(utils.ErrCodeKeyringUnavailable, err.Error()).Build())
	}

	return out.WriteSuccess("auth.status", &AuthStatus{
		NexusURL: nexusURL,
		Username: username,
		Stored:   err == nil,
		Backend:  mgr.GetStorageBackend(),
	})
}

// readPassword reads one line, without echo when r is a terminal
func readPassword(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
