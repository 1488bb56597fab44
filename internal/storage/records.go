package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/valter-silva-au/wayanad-weather/pkg/models"
)

// ErrInvalidRecord is returned when a record fails schema validation.
var ErrInvalidRecord = errors.New("invalid record")

// decimal is a number persisted as a JSON string ("11.55"). Legacy data may
// hold bare JSON numbers, which are accepted on read.
type decimal float64

func (d decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(d), 'f', -1, 64))
}

func (d *decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		// An empty field was never filled in; it reads as zero.
		s = strings.TrimSpace(s)
		if s == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parsing decimal %q: %w", s, err)
		}
		*d = decimal(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = decimal(f)
	return nil
}

// observationRecord is the persisted layout of an observation in the
// weatherEntries collection.
type observationRecord struct {
	ID          int64   `json:"id"`
	District    string  `json:"district"`
	State       string  `json:"state"`
	Cluster     string  `json:"cluster"`
	Latitude    decimal `json:"latitude"`
	Longitude   decimal `json:"longitude"`
	Temp        decimal `json:"temp"`
	Rainfall    decimal `json:"rainfall"`
	DateTime    string  `json:"dateTime"`
	SubmittedBy string  `json:"submittedBy"`
}

func recordFromObservation(o models.Observation) observationRecord {
	return observationRecord{
		ID:          o.ID,
		District:    o.District,
		State:       o.State,
		Cluster:     string(o.Zone),
		Latitude:    decimal(o.Latitude),
		Longitude:   decimal(o.Longitude),
		Temp:        decimal(o.Temperature),
		Rainfall:    decimal(o.Precipitation),
		DateTime:    o.DateTime,
		SubmittedBy: o.SubmittedBy,
	}
}

func (r observationRecord) observation() models.Observation {
	return models.Observation{
		ID:            r.ID,
		District:      r.District,
		State:         r.State,
		Zone:          models.Zone(r.Cluster),
		Latitude:      float64(r.Latitude),
		Longitude:     float64(r.Longitude),
		Temperature:   float64(r.Temp),
		Precipitation: float64(r.Rainfall),
		DateTime:      r.DateTime,
		SubmittedBy:   r.SubmittedBy,
	}
}

// ValidateAccount checks an account against the registeredUsers schema.
func ValidateAccount(a models.Account) error {
	switch {
	case a.ID <= 0:
		return fmt.Errorf("%w: account id must be positive, got %d", ErrInvalidRecord, a.ID)
	case strings.TrimSpace(a.Email) == "":
		return fmt.Errorf("%w: account %d has no email", ErrInvalidRecord, a.ID)
	case !a.Role.Valid():
		return fmt.Errorf("%w: account %d has unknown role %q", ErrInvalidRecord, a.ID, a.Role)
	case !a.Status.Valid():
		return fmt.Errorf("%w: account %d has unknown status %q", ErrInvalidRecord, a.ID, a.Status)
	}
	return nil
}

// ValidateObservation checks an observation before it is written: the
// stored layout plus coordinate and precipitation ranges.
func ValidateObservation(o models.Observation) error {
	if err := checkObservationLayout(o); err != nil {
		return err
	}
	switch {
	case o.Latitude < -90 || o.Latitude > 90:
		return fmt.Errorf("%w: observation %d latitude %v out of range", ErrInvalidRecord, o.ID, o.Latitude)
	case o.Longitude < -180 || o.Longitude > 180:
		return fmt.Errorf("%w: observation %d longitude %v out of range", ErrInvalidRecord, o.ID, o.Longitude)
	case o.Precipitation < 0:
		return fmt.Errorf("%w: observation %d has negative precipitation", ErrInvalidRecord, o.ID)
	}
	return nil
}

// checkObservationLayout is the read-side check. Stored values outside the
// write ranges are kept as they are.
func checkObservationLayout(o models.Observation) error {
	switch {
	case o.ID <= 0:
		return fmt.Errorf("%w: observation id must be positive, got %d", ErrInvalidRecord, o.ID)
	case !o.Zone.Valid():
		return fmt.Errorf("%w: observation %d has unknown zone %q", ErrInvalidRecord, o.ID, o.Zone)
	case strings.TrimSpace(o.SubmittedBy) == "":
		return fmt.Errorf("%w: observation %d has no submitter", ErrInvalidRecord, o.ID)
	case !finite(o.Latitude, o.Longitude, o.Temperature, o.Precipitation):
		return fmt.Errorf("%w: observation %d has a non-finite value", ErrInvalidRecord, o.ID)
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func decodeAccount(raw json.RawMessage) (models.Account, error) {
	var a models.Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := ValidateAccount(a); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func decodeObservation(raw json.RawMessage) (models.Observation, error) {
	var r observationRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.Observation{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	o := r.observation()
	if err := checkObservationLayout(o); err != nil {
		return models.Observation{}, err
	}
	return o, nil
}

// decodeCollection splits a serialized collection into records and decodes
// each one independently. A collection that is not a JSON array yields err;
// individual records that fail to decode are reported in dropped.
func decodeCollection[T any](data []byte, decode func(json.RawMessage) (T, error)) (items []T, dropped []error, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("parsing collection: %w", err)
	}
	items = make([]T, 0, len(raws))
	for _, raw := range raws {
		item, err := decode(raw)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		items = append(items, item)
	}
	return items, dropped, nil
}
