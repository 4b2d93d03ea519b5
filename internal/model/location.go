package model

// Location describes where a school or governing body sits.  Coordinates are
// optional – many records only carry the administrative district and
// province, and the proximity ranker falls back to those when either side
// of a pair is missing coordinates.
//
// Fields:
//  Latitude  – decimal degrees, nil when not geocoded.
//  Longitude – decimal degrees, nil when not geocoded.
//  District  – administrative district name.
//  Province  – province name.
type Location struct {
    Latitude  *float64 `json:"latitude,omitempty"`  // decimal degrees
    Longitude *float64 `json:"longitude,omitempty"` // decimal degrees
    District  string   `json:"district,omitempty"`  // district name
    Province  string   `json:"province,omitempty"`  // province name
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l Location) HasCoordinates() bool {
    return l.Latitude != nil && l.Longitude != nil
}
