package spacexapi

// RawLaunch is one launch as returned by the launches endpoints. Only
// the fields the pipeline consumes are decoded; everything else in the
// payload is ignored.
type RawLaunch struct {
	Rocket       string    `json:"rocket"`
	Payloads     []string  `json:"payloads"`
	Launchpad    string    `json:"launchpad"`
	Cores        []RawCore `json:"cores"`
	FlightNumber int64     `json:"flight_number"`
	DateUtc      string    `json:"date_utc"`
}

// RawCore is the per-launch core object embedded in a RawLaunch. The
// flags and landing outcome live here, not on the core entity itself.
type RawCore struct {
	Core           string  `json:"core"`
	Flight         *int64  `json:"flight"`
	Gridfins       *bool   `json:"gridfins"`
	Reused         *bool   `json:"reused"`
	Legs           *bool   `json:"legs"`
	Landpad        *string `json:"landpad"`
	LandingSuccess *bool   `json:"landing_success"`
	LandingType    *string `json:"landing_type"`
}

type Rocket struct {
	Name string `json:"name"`
}

type Launchpad struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Payload struct {
	MassKg *float64 `json:"mass_kg"`
	Orbit  *string  `json:"orbit"`
}

type Core struct {
	Block      *int64 `json:"block"`
	ReuseCount int64  `json:"reuse_count"`
	Serial     string `json:"serial"`
}
