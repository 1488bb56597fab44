package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .wdeskconfig.yaml",
	Long: `Write a .wdeskconfig.yaml with the default settings to the desk's base
directory (WDESK_HOME, or the current directory).

An existing file is left untouched unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil {
			return fmt.Errorf("configuration manager not initialized")
		}

		path, err := ConfigMgr.WriteDefaultConfig(initForce)
		if err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
