package observability

import (
	"fmt"
	"time"
)

// Metrics holds desk activity derived from the event log.
type Metrics struct {
	ObservationsCreated  int            `json:"observations_created"`
	ObservationsUpdated  int            `json:"observations_updated"`
	ObservationsDeleted  int            `json:"observations_deleted"`
	ObservationsByZone   map[string]int `json:"observations_by_zone"`
	SubmissionsByAccount map[string]int `json:"submissions_by_account"`
	AccountsCreated      int            `json:"accounts_created"`
	Logins               int            `json:"logins"`
	FailedLogins         int            `json:"failed_logins"`
	RecordsDropped       int            `json:"records_dropped"`
	StoreWarnings        int            `json:"store_warnings"`
	EventCount           int            `json:"event_count"`
	OldestEvent          *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent          *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		ObservationsByZone:   make(map[string]int),
		SubmissionsByAccount: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "observation.created":
			m.ObservationsCreated++
			if zone, ok := event.Data["zone"].(string); ok {
				m.ObservationsByZone[zone]++
			}
			if by, ok := event.Data["submitted_by"].(string); ok {
				m.SubmissionsByAccount[by]++
			}
		case "observation.updated":
			m.ObservationsUpdated++
		case "observation.deleted":
			m.ObservationsDeleted++
		case "account.created":
			m.AccountsCreated++
		case "auth.login":
			m.Logins++
		case "auth.login_failed":
			m.FailedLogins++
		case "store.record_dropped":
			m.RecordsDropped++
			m.StoreWarnings++
		case "store.collection_malformed", "store.read_failed", "store.seed_failed":
			m.StoreWarnings++
		}
	}

	return m, nil
}
