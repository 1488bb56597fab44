package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	wdeskmcp "github.com/valter-silva-au/wayanad-weather/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the wdesk MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wdesk MCP server on stdio",
	Long: `Start the wdesk MCP server on stdio transport.

The server exposes read-only desk views as MCP tools: zone_status,
list_observations, get_metrics, get_alerts. list_observations runs as the
signed-in account and needs an Admin session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Statuses == nil {
			return fmt.Errorf("status aggregator not initialized")
		}

		srv := wdeskmcp.NewServer(Statuses, Desk, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
