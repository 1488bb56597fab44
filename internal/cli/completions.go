package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

type completionFunc func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)

// completeZones lists the zone names for the first positional argument.
func completeZones(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeZoneFlag(cmd, nil, toComplete)
}

// completeZoneFlag matches zone names case-insensitively.
func completeZoneFlag(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var zones []string
	for _, z := range models.AllZones() {
		if strings.HasPrefix(strings.ToLower(string(z)), strings.ToLower(toComplete)) {
			zones = append(zones, string(z))
		}
	}
	return zones, cobra.ShellCompDirectiveNoFileComp
}

// completeObservationIDs lists the observation ids the signed-in account
// can act on. Admins see every observation when all is true, everyone else
// only their own submissions.
func completeObservationIDs(all bool) completionFunc {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if Desk == nil || len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var obs []models.Observation
		var err error
		if all {
			obs, err = Desk.Observations("")
		}
		if !all || errors.Is(err, core.ErrForbidden) {
			obs, err = Desk.MySubmissions()
		}
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var ids []string
		for _, o := range obs {
			id := strconv.FormatInt(o.ID, 10)
			if strings.HasPrefix(id, toComplete) {
				ids = append(ids, id+"\t"+string(o.Zone)+", "+o.DateTime)
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeAccountIDs lists account ids (admin only) for the first argument
// and roles for the second, matching 'users role <id> <role>'.
func completeAccountIDs(withRole bool) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch {
		case len(args) == 1 && withRole:
			return completeRoles(cmd, nil, toComplete)
		case len(args) > 0 || Desk == nil:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		accounts, err := Desk.Accounts()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var ids []string
		for _, a := range accounts {
			id := strconv.FormatInt(a.ID, 10)
			if strings.HasPrefix(id, toComplete) {
				ids = append(ids, id+"\t"+a.Email+" ("+string(a.Role)+")")
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

func completeRoles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(models.RoleUser) + "\tRegular volunteer",
		string(models.RoleAdmin) + "\tAdministrator",
	}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	statusCmd.ValidArgsFunction = completeZones
	obsEditCmd.ValidArgsFunction = completeObservationIDs(false)
	obsRmCmd.ValidArgsFunction = completeObservationIDs(true)
	usersToggleCmd.ValidArgsFunction = completeAccountIDs(false)
	usersRoleCmd.ValidArgsFunction = completeAccountIDs(true)
}

// registerZoneFlagCompletion completes the --zone flag of cmd. The flag
// must already be defined.
func registerZoneFlagCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("zone", completeZoneFlag)
}
