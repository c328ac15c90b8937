package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/services"
)

var loginEmail string

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored access credential",
	Long: `Manage the access credential used for requests to the analysis service.

Available subcommands:
  login  - Log in and store an access token
  logout - Remove the stored access token
  status - Show the stored credential`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store an access token",
	Long: `Log in with email and password and store the returned access token.

The password is read from the terminal without echo, or from the first line
of standard input when it is not a terminal.

Examples:
  klauzula auth login --email jan@example.com
  echo "$PASSWORD" | klauzula auth login --email jan@example.com`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	_ = authLoginCmd.MarkFlagRequired("email")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, nil)
	if err != nil {
		return err
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	if password == "" {
		return lib.ErrValidation("password", "password must not be empty")
	}

	cred, err := services.NewAuthClient(rt.http, rt.logger).Login(cmd.Context(), loginEmail, password)
	if err != nil {
		return err
	}

	if err := rt.credentials.Save(cmd.Context(), *cred); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Logged in as %s\n", color.GreenString("✓"), cred.Email)
	fmt.Fprintf(out, "  Credential stored in %s\n", rt.credentials.Path())
	return nil
}

// readPassword prompts without echo on a terminal, otherwise reads one line
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, nil)
	if err != nil {
		return err
	}

	if err := rt.credentials.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rt.config.Auth.Token != "" {
		fmt.Fprintln(out, "Using the token from configuration (auth.token)")
		return nil
	}

	cred, err := rt.credentials.Load()
	if err != nil {
		return err
	}
	if cred == nil {
		fmt.Fprintln(out, "Not logged in")
		return nil
	}

	fmt.Fprintf(out, "Email:      %s\n", cred.Email)
	fmt.Fprintf(out, "Issued:     %s\n", cred.IssuedAt.Format(time.RFC3339))
	if cred.ExpiresAt.IsZero() {
		fmt.Fprintln(out, "Expires:    never")
	} else {
		fmt.Fprintf(out, "Expires:    %s\n", cred.ExpiresAt.Format(time.RFC3339))
	}
	if cred.Expired(time.Now()) {
		fmt.Fprintf(out, "Status:     %s\n", color.RedString("expired"))
	} else {
		fmt.Fprintf(out, "Status:     %s\n", color.GreenString("valid"))
	}
	return nil
}
