package cli

import (
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

func submitAs(t *testing.T, desk core.Desk, email string, zone models.Zone) models.Observation {
	t.Helper()
	if _, err := desk.Session().Login(email, core.DefaultUserSecret); err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	in := models.NewObservationInput()
	in.Zone = zone
	obs, err := desk.SubmitObservation(in)
	if err != nil {
		t.Fatalf("SubmitObservation: %v", err)
	}
	return *obs
}

func TestCompleteZones(t *testing.T) {
	got, directive := completeZones(statusCmd, nil, "ch")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}
	if len(got) != 1 || got[0] != string(models.ZoneChembra) {
		t.Errorf("completeZones(ch) = %v, want [Chembra]", got)
	}

	if got, _ := completeZones(statusCmd, nil, ""); len(got) != len(models.AllZones()) {
		t.Errorf("expected every zone for an empty prefix, got %v", got)
	}
	if got, _ := completeZones(statusCmd, []string{"Chembra"}, ""); got != nil {
		t.Errorf("expected no candidates after the zone argument, got %v", got)
	}
}

func TestCompleteZoneFlag_IgnoresPositionalArgs(t *testing.T) {
	got, _ := completeZoneFlag(obsEditCmd, []string{"42"}, "Kur")
	if len(got) != 1 || got[0] != string(models.ZoneKurichyarmala) {
		t.Errorf("completeZoneFlag(Kur) = %v", got)
	}
}

func TestCompleteObservationIDs(t *testing.T) {
	td := useTestDesk(t)
	mine := submitAs(t, Desk, "ashifa@weather.com", models.ZoneChembra)
	other := submitAs(t, td.newDesk(), "shamna@weather.com", models.ZoneSugandhagiri)

	// A volunteer only sees their own submissions, even for rm.
	for _, all := range []bool{false, true} {
		got, _ := completeObservationIDs(all)(obsRmCmd, nil, "")
		if len(got) != 1 || !strings.HasPrefix(got[0], idString(mine.ID)+"\tChembra") {
			t.Errorf("all=%v: expected only own observation, got %v", all, got)
		}
	}

	admin := td.newDesk()
	if _, err := admin.Session().Login("admin@weather.com", core.DefaultAdminSecret); err != nil {
		t.Fatal(err)
	}
	Desk = admin
	got, _ := completeObservationIDs(true)(obsRmCmd, nil, "")
	if len(got) != 2 {
		t.Errorf("admin should see every observation, got %v", got)
	}
	if got, _ := completeObservationIDs(true)(obsRmCmd, nil, idString(other.ID)); len(got) != 1 {
		t.Errorf("prefix should narrow to one id, got %v", got)
	}
}

func TestCompleteObservationIDs_Anonymous(t *testing.T) {
	useTestDesk(t)
	if got, _ := completeObservationIDs(false)(obsEditCmd, nil, ""); got != nil {
		t.Errorf("expected nothing when logged out, got %v", got)
	}
}

func TestCompleteAccountIDs(t *testing.T) {
	useTestDesk(t)

	if got, _ := completeAccountIDs(false)(usersToggleCmd, nil, ""); got != nil {
		t.Errorf("anonymous sessions should not see account ids, got %v", got)
	}

	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)
	got, _ := completeAccountIDs(false)(usersToggleCmd, nil, "")
	if len(got) != 7 {
		t.Fatalf("expected 7 seeded account ids, got %v", got)
	}
	if got[0] != "1\tadmin@weather.com (Admin)" {
		t.Errorf("unexpected first candidate %q", got[0])
	}

	roles, _ := completeAccountIDs(true)(usersRoleCmd, []string{"2"}, "")
	if len(roles) != 2 || !strings.HasPrefix(roles[0], "User") || !strings.HasPrefix(roles[1], "Admin") {
		t.Errorf("expected role candidates after the id, got %v", roles)
	}
	if got, _ := completeAccountIDs(false)(usersToggleCmd, []string{"2"}, ""); got != nil {
		t.Errorf("toggle takes one id, got %v", got)
	}
}

func TestCompletionWiring(t *testing.T) {
	for _, c := range []*cobra.Command{statusCmd, obsEditCmd, obsRmCmd, usersToggleCmd, usersRoleCmd} {
		if c.ValidArgsFunction == nil {
			t.Errorf("%s has no argument completion", c.CommandPath())
		}
	}
	for _, c := range []*cobra.Command{obsAddCmd, obsEditCmd, obsLsCmd} {
		if _, ok := c.GetFlagCompletionFunc("zone"); !ok {
			t.Errorf("%s --zone has no completion", c.CommandPath())
		}
	}
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
