package models

// AlertLevel is the three-tier classification derived from precipitation.
type AlertLevel string

const (
	AlertNormal   AlertLevel = "Normal"
	AlertElevated AlertLevel = "Elevated"
	AlertCritical AlertLevel = "Critical"
)

// ZoneStatus is the derived state of one zone. Observed is false when no
// observation exists for the zone and the values are the fallback reading.
type ZoneStatus struct {
	Zone          Zone       `json:"zone"`
	Temperature   float64    `json:"temperature"`
	Precipitation float64    `json:"precipitation"`
	LastUpdate    string     `json:"last_update"`
	AlertLevel    AlertLevel `json:"alert_level"`
	Observed      bool       `json:"observed"`
	ObservationID int64      `json:"observation_id,omitempty"`
}
