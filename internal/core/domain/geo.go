package domain

import "fmt"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports coordinates outside the WGS 84 range.
func (p GeoPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90,90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180,180]", p.Lon)
	}
	return nil
}

// CandidateQuery selects venues that could fill a gap. A venue qualifies
// when it is located, not excluded, and within RadiusKm great-circle
// distance of every point in Near. Results are ordered by their summed
// distance to Near, then by id; Limit caps the ordered result and zero
// means no cap.
type CandidateQuery struct {
	Near       []GeoPoint
	RadiusKm   float64
	ExcludeIDs []string
	Limit      int
}
