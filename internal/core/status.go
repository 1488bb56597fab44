package core

import (
	"time"

	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// ObservationSource supplies the observations collection. The record store
// satisfies it.
type ObservationSource interface {
	ListObservations() []models.Observation
}

// StatusAggregator derives the current reading and alert level of each zone
// from the observations collection.
type StatusAggregator interface {
	LatestStatus(zone models.Zone) models.ZoneStatus
	AllStatuses() []models.ZoneStatus
	Classify(precipitation float64) models.AlertLevel
}

type statusAggregator struct {
	source   ObservationSource
	alerts   models.AlertConfig
	fallback models.FallbackConfig
	now      func() time.Time
}

// NewStatusAggregator creates a StatusAggregator. Zero-valued thresholds or
// fallback fall back to the desk defaults. A nil clock uses time.Now.
func NewStatusAggregator(source ObservationSource, alerts models.AlertConfig, fallback models.FallbackConfig, now func() time.Time) StatusAggregator {
	defaults := DefaultGlobalConfig()
	if alerts.CriticalMM == 0 && alerts.ElevatedMM == 0 {
		alerts.CriticalMM = defaults.Alerts.CriticalMM
		alerts.ElevatedMM = defaults.Alerts.ElevatedMM
	}
	if fallback == (models.FallbackConfig{}) {
		fallback = defaults.Fallback
	}
	if now == nil {
		now = time.Now
	}
	return &statusAggregator{source: source, alerts: alerts, fallback: fallback, now: now}
}

// Classify maps a precipitation amount to an alert level. Both thresholds
// are strict: exactly the critical amount is Elevated.
func (a *statusAggregator) Classify(precipitation float64) models.AlertLevel {
	switch {
	case precipitation > a.alerts.CriticalMM:
		return models.AlertCritical
	case precipitation > a.alerts.ElevatedMM:
		return models.AlertElevated
	default:
		return models.AlertNormal
	}
}

// LatestStatus returns the status of zone from its observation with the
// greatest identity, regardless of stored order. A zone with no observations
// reports the fallback reading with Observed set to false.
func (a *statusAggregator) LatestStatus(zone models.Zone) models.ZoneStatus {
	return a.statusFrom(zone, a.source.ListObservations())
}

// AllStatuses returns one status per zone in display order, reading the
// collection once.
func (a *statusAggregator) AllStatuses() []models.ZoneStatus {
	observations := a.source.ListObservations()
	zones := models.AllZones()
	out := make([]models.ZoneStatus, 0, len(zones))
	for _, z := range zones {
		out = append(out, a.statusFrom(z, observations))
	}
	return out
}

func (a *statusAggregator) statusFrom(zone models.Zone, observations []models.Observation) models.ZoneStatus {
	var latest *models.Observation
	for i := range observations {
		o := &observations[i]
		if o.Zone != zone {
			continue
		}
		if latest == nil || o.ID > latest.ID {
			latest = o
		}
	}

	if latest == nil {
		at := a.now().Add(-time.Duration(a.fallback.AgeHours) * time.Hour)
		return models.ZoneStatus{
			Zone:          zone,
			Temperature:   a.fallback.Temperature,
			Precipitation: a.fallback.Precipitation,
			LastUpdate:    FormatTimeIST(at),
			AlertLevel:    models.AlertNormal,
		}
	}

	return models.ZoneStatus{
		Zone:          zone,
		Temperature:   latest.Temperature,
		Precipitation: latest.Precipitation,
		LastUpdate:    FormatIST(latest.ID),
		AlertLevel:    a.Classify(latest.Precipitation),
		Observed:      true,
		ObservationID: latest.ID,
	}
}
