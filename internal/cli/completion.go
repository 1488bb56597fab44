package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how to generate and install the completion
// script of one shell. installPath is relative to the home directory and
// empty when the shell has no install location.
type shellCompletion struct {
	generate    func(w io.Writer) error
	loadHint    string
	installPath string
	installNote string
}

var completionShells = map[string]shellCompletion{
	"bash": {
		generate:    func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		loadHint:    `eval "$(wdesk completion bash)"`,
		installPath: filepath.Join(".local", "share", "bash-completion", "completions", "wdesk"),
		installNote: "Restart your shell to load them.",
	},
	"zsh": {
		generate:    func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		loadHint:    `eval "$(wdesk completion zsh)"`,
		installPath: filepath.Join(".local", "share", "zsh", "site-functions", "_wdesk"),
		installNote: "Make sure the directory is in your fpath, then run: autoload -Uz compinit && compinit",
	},
	"fish": {
		generate:    func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		loadHint:    "wdesk completion fish | source",
		installPath: filepath.Join(".config", "fish", "completions", "wdesk.fish"),
		installNote: "New fish sessions pick them up automatically.",
	},
	"powershell": {
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		loadHint: "wdesk completion powershell | Out-String | Invoke-Expression",
	},
}

func supportedShells() []string {
	names := make([]string, 0, len(completionShells))
	for name := range completionShells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Generate shell completions for wdesk",
	Long: `Generate tab-completions for wdesk commands, flags, zones, roles and ids.

Print the script for the current session:

  eval "$(wdesk completion bash)"

Or install it for your user:

  wdesk completion zsh --install`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		shell, ok := completionShells[args[0]]
		if !ok {
			return fmt.Errorf("unsupported shell %q (supported: %s)", args[0], strings.Join(supportedShells(), ", "))
		}
		if completionInstall {
			return installCompletion(cmd, args[0], shell)
		}
		// The hint goes to stderr so the script can be piped.
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "# load in the current session with: %s\n", shell.loadHint)
		return shell.generate(cmd.OutOrStdout())
	},
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install the completion script for the current user")

	// Replace cobra's default completion command with ours.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func installCompletion(cmd *cobra.Command, name string, shell shellCompletion) error {
	if shell.installPath == "" {
		return fmt.Errorf("automatic install is not supported for %s; add '%s' to your profile", name, shell.loadHint)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target := filepath.Join(home, shell.installPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}
	writeErr := shell.generate(f)
	if closeErr := f.Close(); writeErr == nil && closeErr != nil {
		writeErr = fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	if writeErr != nil {
		return writeErr
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Installed %s completions to %s\n", name, target)
	_, _ = fmt.Fprintln(out, shell.installNote)
	return nil
}
