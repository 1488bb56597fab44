package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

func TestObsAdd_RequiresLogin(t *testing.T) {
	useTestDesk(t)

	_, err := runCLI(t, "obs", "add", "--rain", "10")
	if !errors.Is(err, core.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "wdesk login") {
		t.Errorf("expected a login hint, got %v", err)
	}
}

func TestObsAdd_Defaults(t *testing.T) {
	td := useTestDesk(t)
	loginAs(t, "ashifa@weather.com", core.DefaultUserSecret)

	out, err := runCLI(t, "obs", "add", "--temp", "21.5", "--rain", "12", "--lat", "11.55", "--lon", "76.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Submitted observation") || !strings.Contains(out, "Sugandhagiri") {
		t.Errorf("unexpected output: %q", out)
	}

	all := td.store.ListObservations()
	if len(all) != 1 {
		t.Fatalf("expected 1 stored observation, got %d", len(all))
	}
	got := all[0]
	if got.District != models.DefaultDistrict || got.State != models.DefaultState || got.Zone != models.ZoneSugandhagiri {
		t.Errorf("default location not applied: %+v", got)
	}
	if got.Temperature != 21.5 || got.Precipitation != 12 || got.SubmittedBy != "ashifa@weather.com" {
		t.Errorf("unexpected observation: %+v", got)
	}
}

func TestObsAdd_UnknownZone(t *testing.T) {
	useTestDesk(t)
	loginAs(t, "ashifa@weather.com", core.DefaultUserSecret)

	_, err := runCLI(t, "obs", "add", "--zone", "Atlantis")
	if err == nil || !strings.Contains(err.Error(), "unknown zone") {
		t.Fatalf("expected unknown zone error, got %v", err)
	}
}

func TestObsEdit_OnlyChangedFields(t *testing.T) {
	td := useTestDesk(t)
	loginAs(t, "ashifa@weather.com", core.DefaultUserSecret)

	if _, err := runCLI(t, "obs", "add", "--zone", "chembra", "--temp", "20", "--rain", "30", "--lat", "11.5", "--lon", "76.08"); err != nil {
		t.Fatalf("add: %v", err)
	}
	original := td.store.ListObservations()[0]

	out, err := runCLI(t, "obs", "edit", fmt.Sprint(original.ID), "--rain", "105")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "Updated observation") {
		t.Errorf("unexpected output: %q", out)
	}

	edited, ok := td.store.GetObservation(original.ID)
	if !ok {
		t.Fatal("observation disappeared")
	}
	if edited.Precipitation != 105 {
		t.Errorf("rain = %v, want 105", edited.Precipitation)
	}
	if edited.Zone != models.ZoneChembra || edited.Temperature != 20 || edited.Latitude != 11.5 {
		t.Errorf("unchanged fields were overwritten: %+v", edited)
	}
	if edited.DateTime != original.DateTime || edited.SubmittedBy != original.SubmittedBy {
		t.Errorf("immutable fields changed: %+v", edited)
	}

	if got := Statuses.LatestStatus(models.ZoneChembra).AlertLevel; got != models.AlertCritical {
		t.Errorf("Chembra level = %s, want Critical", got)
	}
}

func TestObsEdit_NotMine(t *testing.T) {
	td := useTestDesk(t)
	loginAs(t, "ashifa@weather.com", core.DefaultUserSecret)
	if _, err := runCLI(t, "obs", "add", "--rain", "5"); err != nil {
		t.Fatalf("add: %v", err)
	}
	id := td.store.ListObservations()[0].ID

	Desk = td.newDesk()
	loginAs(t, "shamna@weather.com", core.DefaultUserSecret)

	_, err := runCLI(t, "obs", "edit", fmt.Sprint(id), "--rain", "50")
	if err == nil || !strings.Contains(err.Error(), "not found among your submissions") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestObsEdit_BadID(t *testing.T) {
	useTestDesk(t)
	loginAs(t, "ashifa@weather.com", core.DefaultUserSecret)

	_, err := runCLI(t, "obs", "edit", "abc")
	if err == nil || !strings.Contains(err.Error(), "invalid id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestObsRm_AdminDeletesAny(t *testing.T) {
	td := useTestDesk(t)
	loginAs(t, "ashifa@weather.com", core.DefaultUserSecret)
	if _, err := runCLI(t, "obs", "add", "--rain", "5"); err != nil {
		t.Fatalf("add: %v", err)
	}
	id := td.store.ListObservations()[0].ID

	Desk = td.newDesk()
	loginAs(t, "shamna@weather.com", core.DefaultUserSecret)
	if _, err := runCLI(t, "obs", "rm", fmt.Sprint(id)); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another volunteer, got %v", err)
	}

	Desk = td.newDesk()
	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)
	if _, err := runCLI(t, "obs", "rm", fmt.Sprint(id)); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(td.store.ListObservations()) != 0 {
		t.Error("expected observation to be deleted")
	}

	// Unknown id is a no-op.
	if _, err := runCLI(t, "obs", "rm", fmt.Sprint(id)); err != nil {
		t.Fatalf("deleting an unknown id: %v", err)
	}
}

func TestObsLs_AdminOnly(t *testing.T) {
	td := useTestDesk(t)
	loginAs(t, "ashifa@weather.com", core.DefaultUserSecret)
	for _, zone := range []string{"Chembra", "Kurichyarmala", "Chembra"} {
		if _, err := runCLI(t, "obs", "add", "--zone", zone, "--rain", "1"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	if _, err := runCLI(t, "obs", "ls"); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a volunteer, got %v", err)
	}

	Desk = td.newDesk()
	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)

	out, err := runCLI(t, "obs", "ls", "--zone", "chembra", "--json")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	var got []models.Observation
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding output: %v (output was %q)", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 Chembra observations, got %d", len(got))
	}
	for _, o := range got {
		if o.Zone != models.ZoneChembra {
			t.Errorf("zone filter leaked %s", o.Zone)
		}
	}

	out, err = runCLI(t, "obs", "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "Total: 3") || !strings.Contains(out, "ashifa@weather.com") {
		t.Errorf("unexpected table: %q", out)
	}
}

func TestObsMine(t *testing.T) {
	td := useTestDesk(t)
	loginAs(t, "ashifa@weather.com", core.DefaultUserSecret)
	if _, err := runCLI(t, "obs", "add", "--rain", "1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	Desk = td.newDesk()
	loginAs(t, "shamna@weather.com", core.DefaultUserSecret)
	out, err := runCLI(t, "obs", "mine")
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if !strings.Contains(out, "No observations found.") {
		t.Errorf("expected no submissions for shamna, got %q", out)
	}

	if _, err := runCLI(t, "obs", "add", "--zone", "Kurichyarmala", "--rain", "2"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err = runCLI(t, "obs", "mine", "--json")
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	var got []models.Observation
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(got) != 1 || got[0].SubmittedBy != "shamna@weather.com" {
		t.Errorf("unexpected submissions: %+v", got)
	}
}
