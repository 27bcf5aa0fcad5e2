package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// earthRadiusInMeters is the Earth's volumetric mean radius.
const earthRadiusInMeters = 6371000

// Distance returns the great-circle distance in meters between two points
// given in decimal degrees, using the Haversine formula.
// NaN inputs produce NaN; callers filter missing coordinates first.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusInMeters
}

// IsValidLatLon reports whether lat/lon are finite and inside the geographic range.
func IsValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Bounds defines the corners of a lat/lon box
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains checks whether the given latitude and longitude are within the box
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// BoundsForRadius returns a box enclosing every point within radius meters of
// (lat, lon). Boxes crossing the antimeridian widen to the full longitude range.
func BoundsForRadius(lat, lon, radius float64) Bounds {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	angle := s1.Angle(math.Max(radius, 0)/earthRadiusInMeters) * s1.Radian
	rect := s2.CapFromCenterAngle(center, angle).RectBound()

	bounds := Bounds{
		MinLat: rect.Lo().Lat.Degrees(),
		MaxLat: rect.Hi().Lat.Degrees(),
		MinLon: rect.Lo().Lng.Degrees(),
		MaxLon: rect.Hi().Lng.Degrees(),
	}
	if rect.Lng.IsInverted() || rect.Lng.IsFull() {
		bounds.MinLon = -180
		bounds.MaxLon = 180
	}
	return bounds
}
