package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

// formatDuration formats a duration in a human-friendly way (e.g., "2 days, 3 hours and 45 minutes")
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 && seconds > 0 {
		parts = append(parts, plural(seconds, "second"))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Sign in to, register with, and sign out of the PixelPlaylist backend`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthRegisterCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthTokenCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a username or email and password",
		Long: `Sign in to the PixelPlaylist backend. Tokens are stored per context.

Examples:
  # Prompt for credentials
  pixelplaylist auth login

  # Provide the username, prompt for the password
  pixelplaylist auth login --username alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			var err error
			if username == "" {
				username, err = promptLine("Username or email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			res := cliCtx.Auth.SignIn(cmd.Context(), username, password)
			if !res.Success {
				return resultError(res)
			}

			cliCtx.Logger.Info("login complete", slog.String("username", username))
			fmt.Printf("✓ Signed in as %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username or email (if not provided, will prompt)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (if not provided, will prompt)")

	return cmd
}

func newAuthRegisterCommand() *cobra.Command {
	var reg entities.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			var err error
			if reg.Username == "" {
				if reg.Username, err = promptLine("Username: "); err != nil {
					return err
				}
			}
			if reg.Email == "" {
				if reg.Email, err = promptLine("Email: "); err != nil {
					return err
				}
			}
			if reg.Password, err = promptPassword("Password: "); err != nil {
				return err
			}
			if reg.ConfirmPassword, err = promptPassword("Confirm password: "); err != nil {
				return err
			}

			res := cliCtx.Auth.SignUp(cmd.Context(), reg)
			if !res.Success {
				return resultError(res)
			}

			fmt.Printf("✓ %s\n", res.Message)
			fmt.Println("Run 'pixelplaylist auth login' to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "Username (if not provided, will prompt)")
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "Email address (if not provided, will prompt)")
	cmd.Flags().StringVar(&reg.Name, "name", "", "Display name")

	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			if !cliCtx.Auth.IsAuthenticated() {
				fmt.Println("Not logged in")
				return nil
			}

			cliCtx.Auth.SignOut()
			fmt.Println("✓ Successfully logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			token := cliCtx.API.Tokens().AccessToken()
			if token == "" {
				fmt.Println("Not logged in")
				return nil
			}

			if username := cliCtx.Auth.Username(); username != "" {
				fmt.Printf("Logged in as: %s\n", username)
			} else {
				fmt.Println("Logged in")
			}
			fmt.Printf("Backend: %s\n", cliCtx.API.BaseURL())

			exp, ok, err := client.TokenExpiry(token)
			switch {
			case err != nil:
				fmt.Println("⚠  Stored token is unreadable - it will be refreshed on next request")
			case !ok:
				fmt.Println("✓  Token has no expiry")
			default:
				fmt.Printf("Token expires: %s\n", exp.Local().Format("2006-01-02 15:04:05 MST"))
				now := time.Now()
				if !exp.After(now) {
					fmt.Printf("⚠  Token expired %s ago - automatic refresh will be attempted on next request\n", formatDuration(now.Sub(exp)))
				} else {
					fmt.Printf("✓  Valid for %s\n", formatDuration(exp.Sub(now)))
				}
			}

			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Display a valid access token, refreshing it if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			token, err := cliCtx.API.Tokens().EnsureValidToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get token: %w", err)
			}
			if token == "" {
				return fmt.Errorf("not logged in")
			}

			fmt.Println(token)
			return nil
		},
	}
}

// resultError turns a failed Result into an error listing any field errors
func resultError(res entities.Result) error {
	if len(res.FieldErrors) == 0 {
		return fmt.Errorf("%s", res.Error)
	}

	fields := make([]string, 0, len(res.FieldErrors))
	for field := range res.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(res.Error)
	for _, field := range fields {
		if res.FieldErrors[field] == res.Error {
			continue
		}
		fmt.Fprintf(&b, "\n  %s: %s", field, res.FieldErrors[field])
	}
	return fmt.Errorf("%s", b.String())
}

var stdin = bufio.NewReader(os.Stdin)

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // newline after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}
