package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/valter-silva-au/wayanad-weather/pkg/models"
	"pgregory.net/rapid"
)

// Feature: observability, Property 1: Observations counted per zone sum to the created total
func TestProperty_MetricsZoneCountsSumToCreated(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir := t.TempDir()
		el, err := NewJSONLEventLog(filepath.Join(dir, "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numEvents := rapid.IntRange(1, 20).Draw(rt, "numEvents")
		baseTime := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
		zones := models.AllZones()
		want := map[string]int{}

		for i := 0; i < numEvents; i++ {
			zone := string(rapid.SampledFrom(zones).Draw(rt, fmt.Sprintf("zone_%d", i)))
			hoursOffset := rapid.IntRange(0, 168).Draw(rt, fmt.Sprintf("hoursOffset_%d", i))
			want[zone]++
			if err := el.Write(Event{
				Time: baseTime.Add(time.Duration(hoursOffset) * time.Hour),
				Type: "observation.created",
				Data: map[string]any{"zone": zone, "submitted_by": "ashifa@weather.com"},
			}); err != nil {
				rt.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(el).Calculate(baseTime.Add(-time.Hour))
		if err != nil {
			rt.Fatalf("calculating metrics: %v", err)
		}
		if m.ObservationsCreated != numEvents {
			rt.Fatalf("ObservationsCreated = %d, want %d", m.ObservationsCreated, numEvents)
		}
		sum := 0
		for zone, n := range m.ObservationsByZone {
			if n != want[zone] {
				rt.Fatalf("zone %s = %d, want %d", zone, n, want[zone])
			}
			sum += n
		}
		if sum != numEvents {
			rt.Fatalf("zone counts sum to %d, want %d", sum, numEvents)
		}
	})
}

// Feature: observability, Property 2: Failed and successful logins are counted separately
func TestProperty_MetricsLoginCounts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		ok := rapid.IntRange(0, 10).Draw(rt, "ok")
		failed := rapid.IntRange(0, 10).Draw(rt, "failed")
		for i := 0; i < ok; i++ {
			_ = el.Write(Event{Type: "auth.login"})
		}
		for i := 0; i < failed; i++ {
			_ = el.Write(Event{Type: "auth.login_failed"})
		}

		m, err := NewMetricsCalculator(el).Calculate(time.Time{})
		if err != nil {
			rt.Fatalf("calculating metrics: %v", err)
		}
		if m.Logins != ok || m.FailedLogins != failed {
			rt.Fatalf("logins = %d/%d, want %d/%d", m.Logins, m.FailedLogins, ok, failed)
		}
	})
}
