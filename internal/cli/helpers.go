package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/valter-silva-au/wayanad-weather/internal/core"
	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// parseID parses a record identity argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

// parseZone resolves a zone name, ignoring case. An empty name yields "".
func parseZone(name string) (models.Zone, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil
	}
	zone, ok := models.ParseZone(name)
	if !ok {
		return "", fmt.Errorf("unknown zone %q: must be one of %s", name, zoneNames())
	}
	return zone, nil
}

func parseRole(name string) (models.Role, error) {
	for _, r := range []models.Role{models.RoleUser, models.RoleAdmin} {
		if strings.EqualFold(string(r), strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q: must be User or Admin", name)
}

func zoneNames() string {
	names := make([]string, 0, len(models.AllZones()))
	for _, z := range models.AllZones() {
		names = append(names, string(z))
	}
	return strings.Join(names, ", ")
}

// explain adds a hint to session errors so the user knows how to recover.
func explain(err error) error {
	switch {
	case errors.Is(err, core.ErrNotAuthenticated):
		return fmt.Errorf("%w: run 'wdesk login <email>' first", err)
	case errors.Is(err, core.ErrForbidden):
		return fmt.Errorf("%w: sign in with an account that has the required role", err)
	default:
		return err
	}
}
