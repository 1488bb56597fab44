package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

func TestUsersLs_RequiresAdmin(t *testing.T) {
	useTestDesk(t)

	if _, err := runCLI(t, "users", "ls"); !errors.Is(err, core.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	loginAs(t, "gabriel@weather.com", core.DefaultUserSecret)
	if _, err := runCLI(t, "users", "ls"); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUsersLs_SeededAccounts(t *testing.T) {
	useTestDesk(t)
	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)

	out, err := runCLI(t, "users", "ls")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Total: 7") {
		t.Errorf("expected 7 seeded accounts: %q", out)
	}
	for _, email := range []string{"admin@weather.com", "reshma@weather.com"} {
		if !strings.Contains(out, email) {
			t.Errorf("output missing %s", email)
		}
	}
}

func TestUsersAdd_JSONHidesPassword(t *testing.T) {
	useTestDesk(t)
	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)

	out, err := runCLI(t, "users", "add", "obs2@weather.com", "--name", "Second Admin", "--role", "admin", "-p", "s3cret")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Created Admin account Second Admin") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = runCLI(t, "users", "ls", "--json")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if strings.Contains(out, "s3cret") {
		t.Error("password leaked into listing")
	}
	var accounts []models.Account
	if err := json.Unmarshal([]byte(out), &accounts); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	last := accounts[len(accounts)-1]
	if last.Email != "obs2@weather.com" || last.Role != models.RoleAdmin || last.Status != models.AccountActive {
		t.Errorf("new account should be appended as an active Admin, got %+v", last)
	}
}

func TestUsersAdd_BadRole(t *testing.T) {
	useTestDesk(t)
	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)

	_, err := runCLI(t, "users", "add", "x@weather.com", "--name", "X", "--role", "Owner")
	if err == nil || !strings.Contains(err.Error(), "unknown role") {
		t.Fatalf("expected unknown role error, got %v", err)
	}
}

func TestUsersToggle_DisablesLogin(t *testing.T) {
	td := useTestDesk(t)
	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)

	out, err := runCLI(t, "users", "toggle", "6")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !strings.Contains(out, "suresh@weather.com is now Disabled") {
		t.Errorf("unexpected output: %q", out)
	}

	other := td.newDesk()
	if _, err := other.Session().Login("suresh@weather.com", core.DefaultUserSecret); !errors.Is(err, core.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}

	if _, err := runCLI(t, "users", "toggle", "6"); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if _, err := other.Session().Login("suresh@weather.com", core.DefaultUserSecret); err != nil {
		t.Fatalf("login after re-enabling: %v", err)
	}
}

func TestUsersToggle_UnknownAccount(t *testing.T) {
	useTestDesk(t)
	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)

	if _, err := runCLI(t, "users", "toggle", "999"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUsersRole_PromotesToAdmin(t *testing.T) {
	td := useTestDesk(t)
	loginAs(t, "admin@weather.com", core.DefaultAdminSecret)

	out, err := runCLI(t, "users", "role", "7", "Admin")
	if err != nil {
		t.Fatalf("role: %v", err)
	}
	if !strings.Contains(out, "reshma@weather.com is now Admin") {
		t.Errorf("unexpected output: %q", out)
	}

	// A promoted account without a password now uses the admin secret.
	other := td.newDesk()
	if _, err := other.Session().Login("reshma@weather.com", core.DefaultUserSecret); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("user secret should stop working, got %v", err)
	}
	if _, err := other.Session().Login("reshma@weather.com", core.DefaultAdminSecret); err != nil {
		t.Fatalf("admin secret: %v", err)
	}
}
