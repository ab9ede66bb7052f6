package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	loginOAuth    string
	loginRedirect string

	signupEmail    string
	signupPassword string
	signupConfirm  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the conversion service",
	Long: `Sign in with email and password, or start an OAuth flow.

With --oauth, prints the provider's authorization URL to open in a
browser instead of asking for credentials.

Examples:
  docmorph login --email you@example.com
  docmorph login --oauth google`,
	RunE: runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the cached session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginOAuth, "oauth", "", "OAuth provider name (e.g. google, github)")
	loginCmd.Flags().StringVar(&loginRedirect, "redirect", "", "redirect URL for the OAuth flow")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "account email")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "account password (prompted when omitted)")
	signupCmd.Flags().StringVar(&signupConfirm, "confirm", "", "password confirmation (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	authSession, err := container.InitAuth(cmd.Context())
	if err != nil {
		return err
	}

	if loginOAuth != "" {
		url, err := authSession.SignInWithOAuth(cmd.Context(), loginOAuth, loginRedirect)
		if err != nil {
			return err
		}
		cmd.Println("Open this URL in a browser to continue:")
		cmd.Println(url)
		return nil
	}

	email, err := promptIfEmpty(loginEmail, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptIfEmpty(loginPassword, "Password: ")
	if err != nil {
		return err
	}

	if err := authSession.SignIn(cmd.Context(), email, password); err != nil {
		return err
	}
	cmd.Printf("Signed in as %s\n", email)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	authSession, err := container.InitAuth(cmd.Context())
	if err != nil {
		return err
	}

	email, err := promptIfEmpty(signupEmail, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptIfEmpty(signupPassword, "Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptIfEmpty(signupConfirm, "Confirm password: ")
	if err != nil {
		return err
	}

	pending, err := authSession.SignUp(cmd.Context(), email, password, confirm)
	if err != nil {
		return err
	}
	if pending {
		cmd.Printf("Account created. Check %s for a confirmation email before signing in.\n", email)
		return nil
	}
	cmd.Printf("Signed up and signed in as %s\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	authSession, err := container.InitAuth(cmd.Context())
	if err != nil {
		return err
	}
	if err := authSession.SignOut(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	authSession, err := container.InitAuth(cmd.Context())
	if err != nil {
		return err
	}
	user := authSession.CurrentUser()
	if user == nil {
		cmd.Println("Not signed in")
		return nil
	}
	cmd.Printf("%s (%s)\n", user.Email, user.ID)
	return nil
}

func promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
