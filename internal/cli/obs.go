package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

var (
	obsFlags    obsInputFlags
	editFlags   obsInputFlags
	obsListZone string
	obsListJSON bool
)

// obsInputFlags binds the editable observation fields to command flags.
type obsInputFlags struct {
	zone     string
	district string
	state    string
	lat      float64
	lon      float64
	temp     float64
	rain     float64
}

func (f *obsInputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.zone, "zone", string(models.DefaultZone), "Zone ("+zoneNames()+")")
	fs.StringVar(&f.district, "district", models.DefaultDistrict, "District")
	fs.StringVar(&f.state, "state", models.DefaultState, "State")
	fs.Float64Var(&f.lat, "lat", 0, "Latitude in decimal degrees")
	fs.Float64Var(&f.lon, "lon", 0, "Longitude in decimal degrees")
	fs.Float64Var(&f.temp, "temp", 0, "Temperature in °C")
	fs.Float64Var(&f.rain, "rain", 0, "Rainfall in mm")
}

// apply overlays the flags set on the command line onto base.
func (f *obsInputFlags) apply(fs *pflag.FlagSet, base models.ObservationInput) (models.ObservationInput, error) {
	if fs.Changed("zone") || base.Zone == "" {
		zone, err := parseZone(f.zone)
		if err != nil {
			return base, err
		}
		base.Zone = zone
	}
	if fs.Changed("district") || base.District == "" {
		base.District = f.district
	}
	if fs.Changed("state") || base.State == "" {
		base.State = f.state
	}
	if fs.Changed("lat") {
		base.Latitude = f.lat
	}
	if fs.Changed("lon") {
		base.Longitude = f.lon
	}
	if fs.Changed("temp") {
		base.Temperature = f.temp
	}
	if fs.Changed("rain") {
		base.Precipitation = f.rain
	}
	return base, nil
}

var obsCmd = &cobra.Command{
	Use:     "obs",
	Aliases: []string{"observation"},
	Short:   "Submit and review weather observations",
}

var obsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit a new observation",
	Long: `Submit a weather observation for a zone as the signed-in account.

Example:
  wdesk obs add --zone Chembra --lat 11.51 --lon 76.08 --temp 21.5 --rain 105`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}

		input, err := obsFlags.apply(cmd.Flags(), models.NewObservationInput())
		if err != nil {
			return err
		}

		obs, err := Desk.SubmitObservation(input)
		if err != nil {
			return fmt.Errorf("submitting observation: %w", explain(err))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Submitted observation %d for %s at %s\n", obs.ID, obs.Zone, obs.DateTime)
		return nil
	},
}

var obsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit one of your observations",
	Long: `Change the fields of an observation you submitted. Only the flags given
are changed; the identity, submission time and submitter never change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		mine, err := Desk.MySubmissions()
		if err != nil {
			return fmt.Errorf("editing observation: %w", explain(err))
		}
		var existing *models.Observation
		for i := range mine {
			if mine[i].ID == id {
				existing = &mine[i]
				break
			}
		}
		if existing == nil {
			return fmt.Errorf("observation %d not found among your submissions", id)
		}

		input, err := editFlags.apply(cmd.Flags(), existing.Input())
		if err != nil {
			return err
		}

		updated, err := Desk.UpdateObservation(id, input)
		if err != nil {
			return fmt.Errorf("editing observation %d: %w", id, explain(err))
		}
		if updated == nil {
			// Removed by another session in the meantime.
			return fmt.Errorf("observation %d no longer exists", id)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated observation %d\n", updated.ID)
		return nil
	},
}

var obsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an observation",
	Long: `Delete an observation. Submitters may delete their own observations;
administrators may delete any. Deleting an unknown id does nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := Desk.DeleteObservation(id); err != nil {
			return fmt.Errorf("deleting observation %d: %w", id, explain(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted observation %d\n", id)
		return nil
	},
}

var obsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all observations (Admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		zone, err := parseZone(obsListZone)
		if err != nil {
			return err
		}
		observations, err := Desk.Observations(zone)
		if err != nil {
			return fmt.Errorf("listing observations: %w", explain(err))
		}
		return printObservations(cmd.OutOrStdout(), observations, obsListJSON, true)
	},
}

var obsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your own observations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Desk == nil {
			return fmt.Errorf("desk not initialized")
		}
		observations, err := Desk.MySubmissions()
		if err != nil {
			return fmt.Errorf("listing your observations: %w", explain(err))
		}
		return printObservations(cmd.OutOrStdout(), observations, obsListJSON, false)
	},
}

func printObservations(out io.Writer, observations []models.Observation, asJSON, withSubmitter bool) error {
	if asJSON {
		if observations == nil {
			observations = []models.Observation{}
		}
		data, err := json.MarshalIndent(observations, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting observations as JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(observations) == 0 {
		fmt.Fprintln(out, "No observations found.")
		return nil
	}

	header := fmt.Sprintf("  %-14s %-14s %-26s %8s %8s %9s %9s", "ID", "ZONE", "SUBMITTED", "TEMP °C", "RAIN mm", "LAT", "LON")
	if withSubmitter {
		header += "  SUBMITTED BY"
	}
	fmt.Fprintln(out, header)
	for _, o := range observations {
		line := fmt.Sprintf("  %-14d %-14s %-26s %8.1f %8.1f %9.4f %9.4f", o.ID, o.Zone, o.DateTime, o.Temperature, o.Precipitation, o.Latitude, o.Longitude)
		if withSubmitter {
			line += "  " + o.SubmittedBy
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "\n  Total: %d\n", len(observations))
	return nil
}

func init() {
	obsFlags.register(obsAddCmd.Flags())
	editFlags.register(obsEditCmd.Flags())

	for _, c := range []*cobra.Command{obsLsCmd, obsMineCmd} {
		c.Flags().BoolVar(&obsListJSON, "json", false, "Output as JSON")
	}
	obsLsCmd.Flags().StringVar(&obsListZone, "zone", "", "Only show this zone")
	for _, c := range []*cobra.Command{obsAddCmd, obsEditCmd, obsLsCmd} {
		registerZoneFlagCompletion(c)
	}

	obsCmd.AddCommand(obsAddCmd, obsEditCmd, obsRmCmd, obsLsCmd, obsMineCmd)
	rootCmd.AddCommand(obsCmd)
}
