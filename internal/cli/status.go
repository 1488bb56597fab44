package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [zone]",
	Short: "Show the latest reading and alert level per zone",
	Long: `Show each zone's latest temperature, rainfall and alert level.

Rainfall above 100 mm is Critical, above 40 mm Elevated, otherwise Normal.
A zone without observations shows the fallback reading, marked "no data".
No sign-in is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Statuses == nil {
			return fmt.Errorf("status aggregator not initialized")
		}

		var statuses []models.ZoneStatus
		if len(args) == 1 {
			zone, err := parseZone(args[0])
			if err != nil {
				return err
			}
			statuses = []models.ZoneStatus{Statuses.LatestStatus(zone)}
		} else {
			statuses = Statuses.AllStatuses()
		}

		if statusJSON {
			data, err := json.MarshalIndent(statuses, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting status as JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		printStatuses(cmd.OutOrStdout(), statuses)
		return nil
	},
}

// printStatuses prints a table of zone statuses.
func printStatuses(out io.Writer, statuses []models.ZoneStatus) {
	fmt.Fprintf(out, "  %-14s %8s %8s %-9s %s\n", "ZONE", "TEMP °C", "RAIN mm", "LEVEL", "LAST UPDATE")
	for _, st := range statuses {
		updated := st.LastUpdate
		if !st.Observed {
			updated += " (no data)"
		}
		fmt.Fprintf(out, "  %-14s %8.1f %8.1f %-9s %s\n", st.Zone, st.Temperature, st.Precipitation, st.AlertLevel, updated)
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statusCmd)
}
