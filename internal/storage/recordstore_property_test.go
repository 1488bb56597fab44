package storage

import (
	"fmt"
	"math"
	"testing"

	"github.com/valter-silva-au/wayanad-weather/pkg/models"
	"pgregory.net/rapid"
)

func genZone(t *rapid.T) models.Zone {
	zones := models.AllZones()
	return zones[rapid.IntRange(0, len(zones)-1).Draw(t, "zoneIdx")]
}

// genCoord draws a value with at most two decimals so the string encoding
// round-trips exactly.
func genCoord(t *rapid.T, label string, lo, hi int) float64 {
	return float64(rapid.IntRange(lo*100, hi*100).Draw(t, label)) / 100
}

func genAlphaString(t *rapid.T, label string, minLen, maxLen int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	n := rapid.IntRange(minLen, maxLen).Draw(t, label+"Len")
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rapid.IntRange(0, len(letters)-1).Draw(t, label+"Char")]
	}
	return string(b)
}

func genObservation(t *rapid.T) models.Observation {
	return models.Observation{
		ID:            rapid.Int64Range(1, math.MaxInt32).Draw(t, "id"),
		District:      genAlphaString(t, "district", 0, 12),
		State:         genAlphaString(t, "state", 0, 12),
		Zone:          genZone(t),
		Latitude:      genCoord(t, "lat", -90, 90),
		Longitude:     genCoord(t, "lon", -180, 180),
		Temperature:   genCoord(t, "temp", -20, 50),
		Precipitation: genCoord(t, "rain", 0, 500),
		DateTime:      genAlphaString(t, "dateTime", 1, 20),
		SubmittedBy:   genAlphaString(t, "user", 1, 10) + "@weather.com",
	}
}

func genAccount(t *rapid.T) models.Account {
	roles := []models.Role{models.RoleUser, models.RoleAdmin}
	statuses := []models.AccountStatus{models.AccountActive, models.AccountDisabled}
	return models.Account{
		ID:       rapid.Int64Range(100, math.MaxInt32).Draw(t, "id"),
		Name:     genAlphaString(t, "name", 1, 12),
		Email:    genAlphaString(t, "email", 1, 10) + "@weather.com",
		Mobile:   fmt.Sprintf("%010d", rapid.IntRange(0, 999999999).Draw(t, "mobile")),
		Role:     roles[rapid.IntRange(0, 1).Draw(t, "roleIdx")],
		Status:   statuses[rapid.IntRange(0, 1).Draw(t, "statusIdx")],
		Password: genAlphaString(t, "password", 0, 8),
	}
}

// Property: every stored observation reads back unchanged, newest first.
func TestObservationRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		obs := rapid.SliceOfNDistinct(rapid.Custom(genObservation), 1, 15, func(o models.Observation) int64 { return o.ID }).Draw(t, "obs")

		store := NewRecordStore(NewMemoryMedium(), StoreOptions{})
		for _, o := range obs {
			if err := store.PutObservation(o); err != nil {
				t.Fatalf("put %d: %v", o.ID, err)
			}
		}

		got := store.ListObservations()
		if len(got) != len(obs) {
			t.Fatalf("expected %d observations, got %d", len(obs), len(got))
		}
		for i := range obs {
			want := obs[len(obs)-1-i]
			if got[i] != want {
				t.Fatalf("position %d: expected %+v, got %+v", i, want, got[i])
			}
		}
	})
}

// Property: every stored account reads back unchanged, in insertion order
// after the seeded defaults.
func TestAccountRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		accounts := rapid.SliceOfNDistinct(rapid.Custom(genAccount), 1, 10, func(a models.Account) int64 { return a.ID }).Draw(t, "accounts")

		store := NewRecordStore(NewMemoryMedium(), StoreOptions{SeedDefaults: true})
		for _, a := range accounts {
			if err := store.PutAccount(a); err != nil {
				t.Fatalf("put %d: %v", a.ID, err)
			}
		}

		got := store.ListAccounts()
		seeded := len(DefaultAccounts())
		if len(got) != seeded+len(accounts) {
			t.Fatalf("expected %d accounts, got %d", seeded+len(accounts), len(got))
		}
		for i, a := range accounts {
			if got[seeded+i] != a {
				t.Fatalf("position %d: expected %+v, got %+v", seeded+i, a, got[seeded+i])
			}
		}
	})
}

// Property: a write that alters the creation timestamp or the submitter of an
// existing observation never changes the stored record.
func TestObservationImmutableFields(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		orig := genObservation(t)
		edit := genObservation(t)
		edit.ID = orig.ID

		store := NewRecordStore(NewMemoryMedium(), StoreOptions{})
		if err := store.PutObservation(orig); err != nil {
			t.Fatal(err)
		}

		err := store.PutObservation(edit)
		stored, ok := store.GetObservation(orig.ID)
		if !ok {
			t.Fatal("observation disappeared")
		}
		if stored.ID != orig.ID || stored.DateTime != orig.DateTime || stored.SubmittedBy != orig.SubmittedBy {
			t.Fatalf("immutable fields changed: %+v -> %+v", orig, stored)
		}
		if edit.DateTime == orig.DateTime && edit.SubmittedBy == orig.SubmittedBy {
			if err != nil {
				t.Fatalf("expected a compatible edit to succeed, got %v", err)
			}
			if stored != edit {
				t.Fatalf("expected edit applied, got %+v", stored)
			}
		} else if err == nil {
			t.Fatal("expected an incompatible edit to be rejected")
		}
	})
}
