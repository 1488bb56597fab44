package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	loginPassword    string
	registerName     string
	registerMobile   string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to the desk",
	Long: `Sign in with an account email and password.

Accounts created without a password sign in with the default secret of
their role. The session is remembered until 'wdesk logout'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}

		account, err := Desk.Session().Login(args[0], loginPassword)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s> (%s)\n", account.Name, account.Email, account.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the desk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		if err := Desk.Session().Logout(); err != nil {
			return fmt.Errorf("logging out: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		out := cmd.OutOrStdout()
		account, ok := Desk.Session().Current()
		if !ok {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}
		fmt.Fprintf(out, "%s <%s>\n", account.Name, account.Email)
		fmt.Fprintf(out, "  %-8s %s\n", "Role:", account.Role)
		fmt.Fprintf(out, "  %-8s %s\n", "Status:", account.Status)
		if account.Mobile != "" {
			fmt.Fprintf(out, "  %-8s %s\n", "Mobile:", account.Mobile)
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a volunteer account",
	Long: `Register a new regular (User) account. No sign-in is needed.

Without --password the account signs in with the default user secret.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}

		account, err := Desk.Register(registerName, args[0], registerMobile, registerPassword)
		if err != nil {
			return fmt.Errorf("registering %s: %w", args[0], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s> as %s (id %d)\n", account.Name, account.Email, account.Role, account.ID)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name (required)")
	registerCmd.Flags().StringVar(&registerMobile, "mobile", "", "Mobile number")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Password (defaults to the user secret)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)
}
