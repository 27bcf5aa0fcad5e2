package trajet

import (
	"context"
	"math"
	"sort"

	"trajet.transit.mg/internal/geo"
)

// Nearby returns the stops within radius meters of lat/lon, closest first.
// A non-positive radius selects DefaultNearbyRadius.
func (s *Service) Nearby(ctx context.Context, lat, lon *float64, radius float64) ([]NearbyStop, error) {
	if lat == nil || lon == nil {
		return nil, &InvalidCoordinateError{Message: "latitude and longitude are required"}
	}
	if !geo.IsValidLatLon(*lat, *lon) {
		return nil, &InvalidCoordinateError{Message: "latitude and longitude must be valid decimal degrees"}
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, &ValidationError{
			Code:    CodeInvalidParameter,
			Message: "radius must be a finite number",
			Fields:  []string{"radius"},
		}
	}
	if radius <= 0 {
		radius = DefaultNearbyRadius
	}

	candidates, err := s.repo.FindStopsNear(ctx, *lat, *lon, radius)
	if err != nil {
		return nil, storageErr("find stops near", err)
	}

	nearby := make([]NearbyStop, 0, len(candidates))
	for _, stop := range candidates {
		if !stop.HasCoordinates() {
			continue
		}
		d := geo.Distance(*lat, *lon, *stop.Latitude, *stop.Longitude)
		if d <= radius {
			nearby = append(nearby, NearbyStop{Stop: stop, Distance: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})

	return nearby, nil
}
