package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-journal-client/apierror"
	"github.com/jrsteele09/go-journal-client/token"
	"github.com/jrsteele09/go-journal-client/users"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Example: `  journal login --email demo@example.com --password Passw0rd`,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}

			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := c.Auth.Login(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("login failed: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Auth.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logged out, but the stored credentials could not be removed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newRegisterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. Registration does not log you in; run
"journal login" afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reg users.Registration
			reg.Email, _ = cmd.Flags().GetString("email")
			reg.Password, _ = cmd.Flags().GetString("password")
			reg.FirstName, _ = cmd.Flags().GetString("first-name")
			reg.LastName, _ = cmd.Flags().GetString("last-name")
			if reg.Email == "" || reg.Password == "" {
				return errors.New("--email and --password are required")
			}
			if err := users.ValidatePasswordStrength(reg.Password); err != nil {
				return err
			}

			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			user, err := c.Auth.Register(cmd.Context(), reg)
			if err != nil {
				return fmt.Errorf("registration failed: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password")
	cmd.Flags().String("first-name", "", "first name")
	cmd.Flags().String("last-name", "", "last name")
	return cmd
}

func newResetPasswordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			newPassword, _ := cmd.Flags().GetString("new-password")
			if email == "" || newPassword == "" {
				return errors.New("--email and --new-password are required")
			}

			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := c.Auth.ResetPassword(cmd.Context(), email, newPassword); err != nil {
				return fmt.Errorf("password reset failed: %s", describe(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("new-password", "", "the new password")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session without contacting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			state := c.Session.Snapshot()
			out := cmd.OutOrStdout()
			if !state.Authenticated() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintln(out, "Logged in")
			if claims, err := token.Inspect(state.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
				if claims.Expired(time.Now()) {
					fmt.Fprintf(out, "Access token expired at %s (it will be refreshed on the next request)\n", claims.ExpiresAt.Format(time.RFC3339))
				} else {
					fmt.Fprintf(out, "Access token expires at %s\n", claims.ExpiresAt.Format(time.RFC3339))
				}
			}
			if state.RefreshToken == "" {
				fmt.Fprintln(out, "No refresh token stored")
			}
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			user, err := c.Journal.Profile(cmd.Context())
			if err != nil {
				return fmt.Errorf("whoami failed: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.FullName(), user.Email)
			return nil
		},
	}
}

// describe turns a client error into a short message for the terminal.
func describe(err error) string {
	var appErr *apierror.ApplicationError
	var authErr *apierror.AuthenticationError
	switch {
	case errors.As(err, &appErr):
		if msg := appErr.Message(); msg != "" {
			return msg
		}
		return fmt.Sprintf("server answered %d", appErr.StatusCode)
	case errors.As(err, &authErr):
		return "session expired, please log in again"
	case errors.Is(err, apierror.ErrTransport):
		return "could not reach the server: " + err.Error()
	default:
		return err.Error()
	}
}
