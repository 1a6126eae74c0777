package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword prompts for a password without echoing when stdin is a
// terminal, falling back to the --password flag value.
func readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("no password given, use --password or run interactively")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

// NewSignupCmd creates the signup command.
func NewSignupCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassword(password)
			if err != nil {
				return err
			}

			c, _, err := newClient()
			if err != nil {
				return err
			}

			principal, err := c.SignUp(cmd.Context(), args[0], pass)
			if err != nil {
				return err
			}
			fmt.Printf("Signed up as %s\n", principal.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	return cmd
}

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in to an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassword(password)
			if err != nil {
				return err
			}

			c, _, err := newClient()
			if err != nil {
				return err
			}

			principal, err := c.SignIn(cmd.Context(), args[0], pass)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", principal.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	return cmd
}

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

// NewMeCmd creates the me command.
func NewMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, err := newClient()
			if err != nil {
				return err
			}
			if err := requireSession(store); err != nil {
				return err
			}

			principal, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("id:    %s\nemail: %s\nrole:  %s\n", principal.ID, principal.Email, principal.Role)
			return nil
		},
	}
}

// NewForgotPasswordCmd creates the forgot-password command.
func NewForgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}

			ok, err := c.ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no account found for %s", args[0])
			}
			fmt.Println("Reset email requested")
			return nil
		},
	}
}
