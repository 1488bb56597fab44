package models

import "strings"

// Zone is one of the monitored geographic clusters.
type Zone string

const (
	ZoneSugandhagiri  Zone = "Sugandhagiri"
	ZoneChembra       Zone = "Chembra"
	ZoneKurichyarmala Zone = "Kurichyarmala"
)

// AllZones returns every monitored zone in display order.
func AllZones() []Zone {
	return []Zone{ZoneSugandhagiri, ZoneChembra, ZoneKurichyarmala}
}

// Valid reports whether z is a monitored zone.
func (z Zone) Valid() bool {
	for _, known := range AllZones() {
		if z == known {
			return true
		}
	}
	return false
}

// ParseZone matches name against the monitored zones, ignoring case.
func ParseZone(name string) (Zone, bool) {
	for _, z := range AllZones() {
		if strings.EqualFold(string(z), strings.TrimSpace(name)) {
			return z, true
		}
	}
	return "", false
}

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// zoneBounds holds the polygon corners drawn on the dashboard map.
var zoneBounds = map[Zone][]Point{
	ZoneSugandhagiri:  {{11.53, 75.98}, {11.57, 75.98}, {11.57, 76.03}, {11.53, 76.03}},
	ZoneChembra:       {{11.53, 76.10}, {11.58, 76.10}, {11.58, 76.15}, {11.53, 76.15}},
	ZoneKurichyarmala: {{11.60, 75.98}, {11.65, 75.98}, {11.65, 76.03}, {11.60, 76.03}},
}

// ZoneBounds returns a copy of the polygon outlining the zone, or nil for an
// unknown zone.
func ZoneBounds(z Zone) []Point {
	pts, ok := zoneBounds[z]
	if !ok {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}
