package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/wayanad-weather/internal/core"
)

var (
	usersJSON       bool
	userAddName     string
	userAddMobile   string
	userAddRole     string
	userAddPassword string
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"accounts"},
	Short:   "Manage accounts (Admin)",
}

var usersLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		accounts, err := Desk.Accounts()
		if err != nil {
			return fmt.Errorf("listing accounts: %w", explain(err))
		}

		out := cmd.OutOrStdout()
		if usersJSON {
			// Secrets never leave the store.
			for i := range accounts {
				accounts[i].Password = ""
			}
			data, err := json.MarshalIndent(accounts, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting accounts as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(accounts) == 0 {
			fmt.Fprintln(out, "No accounts found.")
			return nil
		}
		fmt.Fprintf(out, "  %-14s %-20s %-26s %-14s %-6s %s\n", "ID", "NAME", "EMAIL", "MOBILE", "ROLE", "STATUS")
		for _, a := range accounts {
			fmt.Fprintf(out, "  %-14d %-20s %-26s %-14s %-6s %s\n", a.ID, a.Name, a.Email, a.Mobile, a.Role, a.Status)
		}
		fmt.Fprintf(out, "\n  Total: %d\n", len(accounts))
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		role, err := parseRole(userAddRole)
		if err != nil {
			return err
		}

		account, err := Desk.CreateAccount(core.AccountInput{
			Name:     userAddName,
			Email:    args[0],
			Mobile:   userAddMobile,
			Role:     role,
			Password: userAddPassword,
		})
		if err != nil {
			return fmt.Errorf("creating account %s: %w", args[0], explain(err))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %s <%s> (id %d)\n", account.Role, account.Name, account.Email, account.ID)
		return nil
	},
}

var usersToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		account, err := Desk.ToggleAccountStatus(id)
		if err != nil {
			return fmt.Errorf("toggling account %d: %w", id, explain(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s is now %s\n", account.Email, account.Status)
		return nil
	},
}

var usersRoleCmd = &cobra.Command{
	Use:   "role <id> <User|Admin>",
	Short: "Change an account's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		role, err := parseRole(args[1])
		if err != nil {
			return err
		}
		account, err := Desk.ChangeAccountRole(id, role)
		if err != nil {
			return fmt.Errorf("changing role of account %d: %w", id, explain(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s is now %s\n", account.Email, account.Role)
		return nil
	},
}

func init() {
	usersLsCmd.Flags().BoolVar(&usersJSON, "json", false, "Output as JSON")

	usersAddCmd.Flags().StringVar(&userAddName, "name", "", "Full name (required)")
	usersAddCmd.Flags().StringVar(&userAddMobile, "mobile", "", "Mobile number")
	usersAddCmd.Flags().StringVar(&userAddRole, "role", "User", "Role (User or Admin)")
	usersAddCmd.Flags().StringVarP(&userAddPassword, "password", "p", "", "Password (defaults to the role secret)")

	usersCmd.AddCommand(usersLsCmd, usersAddCmd, usersToggleCmd, usersRoleCmd)
	rootCmd.AddCommand(usersCmd)
}
