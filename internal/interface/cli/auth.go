package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/auth"
	"github.com/neilberkman/tickr/internal/interface/tui"
)

var (
	authName          string
	authEmail         string
	authPasswordStdin bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the account used for sync",
	Long: `Sign up, sign in and out. The session token is kept in session.json
next to config.toml. With auth.provider = "local" accounts live in the
local database; with "remote" they live on auth.url.`,
}

var authSignUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runAuthSignUp,
}

var authSignInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in to an existing account",
	Args:  cobra.NoArgs,
	RunE:  runAuthSignIn,
}

var authSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and forget the saved session",
	Args:  cobra.NoArgs,
	RunE:  runAuthSignOut,
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runAuthWhoami,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSignUpCmd, authSignInCmd, authSignOutCmd, authWhoamiCmd)

	authSignUpCmd.Flags().StringVar(&authName, "name", "", "Display name (required)")
	for _, c := range []*cobra.Command{authSignUpCmd, authSignInCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Email address (required)")
		c.Flags().BoolVar(&authPasswordStdin, "password-stdin", false, "Read the password from stdin")
		_ = c.MarkFlagRequired("email")
	}
	_ = authSignUpCmd.MarkFlagRequired("name")
}

func readPassword() (string, error) {
	if authPasswordStdin {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	return tui.PromptPassword("Password")
}

// describeAuthError turns provider errors into something to act on
func describeAuthError(err error) error {
	var verrs auth.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return fmt.Errorf("invalid input: %s", verrs.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errors.New("invalid email or password")
	case errors.Is(err, auth.ErrUserExists):
		return errors.New("an account with this email already exists; use 'tickr auth signin'")
	}
	return err
}

func runAuthSignUp(cmd *cobra.Command, args []string) error {
	password, err := readPassword()
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.auth.SignUp(cmd.Context(), auth.SignUpRequest{
		Name:     strings.TrimSpace(authName),
		Email:    strings.TrimSpace(authEmail),
		Password: password,
	})
	if err != nil {
		return describeAuthError(err)
	}
	fmt.Printf("Welcome, %s. You are signed in as %s.\n", s.User.Name, s.User.Email)
	return nil
}

func runAuthSignIn(cmd *cobra.Command, args []string) error {
	password, err := readPassword()
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.auth.SignIn(cmd.Context(), auth.SignInRequest{
		Email:    strings.TrimSpace(authEmail),
		Password: password,
	})
	if err != nil {
		return describeAuthError(err)
	}
	fmt.Printf("Signed in as %s.\n", s.User.Email)
	return nil
}

func runAuthSignOut(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.auth.Restore(cmd.Context()); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if err := a.auth.SignOut(cmd.Context()); err != nil {
		if errors.Is(err, auth.ErrNotSignedIn) {
			fmt.Println("Not signed in.")
			return nil
		}
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func runAuthWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.auth.Restore(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if s == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("Name:     %s\n", s.User.Name)
	fmt.Printf("Email:    %s\n", s.User.Email)
	fmt.Printf("Provider: %s\n", a.cfg.Auth.Provider)
	if !s.Session.ExpiresAt.IsZero() {
		fmt.Printf("Expires:  %s\n", humanize.Time(s.Session.ExpiresAt))
	}
	return nil
}
