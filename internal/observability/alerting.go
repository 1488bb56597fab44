package observability

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Zone        models.Zone   `json:"zone,omitempty"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when the non-precipitation alerts fire.
type AlertThresholds struct {
	// StaleHours is the age after which a zone's latest observation is
	// reported as stale. Zero disables the check.
	StaleHours int `yaml:"stale_hours" json:"stale_hours"`
	// DataQualityHours is the window in which store warnings are counted.
	DataQualityHours int `yaml:"data_quality_hours" json:"data_quality_hours"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		StaleHours:       24,
		DataQualityHours: 24,
	}
}

// StatusSource supplies the current status of every zone.
type StatusSource interface {
	AllStatuses() []models.ZoneStatus
}

// AlertEngine evaluates alert conditions against zone statuses and the
// event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine.
type alertEngine struct {
	statuses   StatusSource
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine. eventLog may be nil, which
// disables the data quality check. A nil clock uses time.Now.
func NewAlertEngine(statuses StatusSource, eventLog EventLog, thresholds AlertThresholds, now func() time.Time) AlertEngine {
	if now == nil {
		now = time.Now
	}
	return &alertEngine{
		statuses:   statuses,
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        now,
	}
}

// Evaluate checks every zone and the store's recent health, returning any
// triggered alerts ordered by zone display order then data quality.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now().UTC()
	var alerts []Alert

	for _, st := range ae.statuses.AllStatuses() {
		alerts = append(alerts, ae.checkZone(st, now)...)
	}

	qualityAlerts, err := ae.checkDataQuality(now)
	if err != nil {
		return nil, fmt.Errorf("checking data quality: %w", err)
	}
	alerts = append(alerts, qualityAlerts...)

	return alerts, nil
}

// checkZone maps one zone status to precipitation and freshness alerts.
func (ae *alertEngine) checkZone(st models.ZoneStatus, now time.Time) []Alert {
	if !st.Observed {
		return []Alert{{
			ID:          fmt.Sprintf("nodata-%s", st.Zone),
			Condition:   "zone_no_data",
			Severity:    SeverityLow,
			Zone:        st.Zone,
			Message:     fmt.Sprintf("%s has no observations; showing the fallback reading", st.Zone),
			TriggeredAt: now,
		}}
	}

	var alerts []Alert
	switch st.AlertLevel {
	case models.AlertCritical:
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("critical-%s", st.Zone),
			Condition:   "precipitation_critical",
			Severity:    SeverityHigh,
			Zone:        st.Zone,
			Message:     fmt.Sprintf("%s recorded %.1f mm at %s (Critical)", st.Zone, st.Precipitation, st.LastUpdate),
			TriggeredAt: now,
		})
	case models.AlertElevated:
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("elevated-%s", st.Zone),
			Condition:   "precipitation_elevated",
			Severity:    SeverityMedium,
			Zone:        st.Zone,
			Message:     fmt.Sprintf("%s recorded %.1f mm at %s (Elevated)", st.Zone, st.Precipitation, st.LastUpdate),
			TriggeredAt: now,
		})
	}

	if ae.thresholds.StaleHours > 0 {
		age := now.Sub(time.UnixMilli(st.ObservationID))
		if age > time.Duration(ae.thresholds.StaleHours)*time.Hour {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("stale-%s", st.Zone),
				Condition:   "zone_stale",
				Severity:    SeverityLow,
				Zone:        st.Zone,
				Message:     fmt.Sprintf("%s has had no observation for more than %d hours (last %s)", st.Zone, ae.thresholds.StaleHours, st.LastUpdate),
				TriggeredAt: now,
			})
		}
	}

	return alerts
}

// checkDataQuality counts store warnings inside the window.
func (ae *alertEngine) checkDataQuality(now time.Time) ([]Alert, error) {
	if ae.eventLog == nil || ae.thresholds.DataQualityHours <= 0 {
		return nil, nil
	}

	since := now.Add(-time.Duration(ae.thresholds.DataQualityHours) * time.Hour)
	events, err := ae.eventLog.Read(EventFilter{Since: &since, TypePrefix: "store."})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	return []Alert{{
		ID:          "data-quality",
		Condition:   "store_degraded",
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("%d stored records or collections were unreadable in the last %d hours", len(events), ae.thresholds.DataQualityHours),
		TriggeredAt: now,
	}}, nil
}
