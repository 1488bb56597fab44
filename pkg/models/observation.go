package models

// Default location values pre-filled on a new submission.
const (
	DefaultDistrict = "Wayanad"
	DefaultState    = "Kerala"
	DefaultZone     = ZoneSugandhagiri
)

// Observation is a single weather reading submitted for a zone. ID is the
// creation instant in Unix milliseconds and doubles as the creation
// timestamp; DateTime is its display form. ID, DateTime and SubmittedBy never
// change after creation.
type Observation struct {
	ID            int64   `json:"id"`
	District      string  `json:"district"`
	State         string  `json:"state"`
	Zone          Zone    `json:"zone"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	DateTime      string  `json:"date_time"`
	SubmittedBy   string  `json:"submitted_by"`
}

// ObservationInput holds the fields a submitter may set or edit.
type ObservationInput struct {
	District      string
	State         string
	Zone          Zone
	Latitude      float64
	Longitude     float64
	Temperature   float64
	Precipitation float64
}

// NewObservationInput returns an input pre-filled with the default location.
func NewObservationInput() ObservationInput {
	return ObservationInput{
		District: DefaultDistrict,
		State:    DefaultState,
		Zone:     DefaultZone,
	}
}

// Apply copies the editable fields of in onto o, leaving the identity,
// creation timestamp and submitter untouched.
func (in ObservationInput) Apply(o Observation) Observation {
	o.District = in.District
	o.State = in.State
	o.Zone = in.Zone
	o.Latitude = in.Latitude
	o.Longitude = in.Longitude
	o.Temperature = in.Temperature
	o.Precipitation = in.Precipitation
	return o
}

// Input extracts the editable fields of o.
func (o Observation) Input() ObservationInput {
	return ObservationInput{
		District:      o.District,
		State:         o.State,
		Zone:          o.Zone,
		Latitude:      o.Latitude,
		Longitude:     o.Longitude,
		Temperature:   o.Temperature,
		Precipitation: o.Precipitation,
	}
}
