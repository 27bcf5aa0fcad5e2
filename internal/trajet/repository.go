package trajet

import "context"

// StopRepository is the read-only storage the search core depends on.
// Implementations only return lines whose status is Accepted; stops without a
// line may be returned and are ignored for routing.
type StopRepository interface {
	// FindStopsByName returns stops whose normalized name contains the
	// normalized query (see textnorm.Matches).
	FindStopsByName(ctx context.Context, query string) ([]Stop, error)

	// FindStopsByLineID returns the stops of a line in line order.
	FindStopsByLineID(ctx context.Context, lineID int64) ([]Stop, error)

	// FindLinesByStopName returns every line with a stop row whose normalized
	// name equals the normalized name, paired with that stop row.
	FindLinesByStopName(ctx context.Context, name string) ([]LineAtStop, error)

	// FindStopsNear returns stops with coordinates lying in a box enclosing the
	// circle of radius meters around lat/lon. The result may include stops
	// slightly outside the circle; callers filter on exact distance.
	FindStopsNear(ctx context.Context, lat, lon, radius float64) ([]Stop, error)

	// ListStopNames returns the distinct names of stored stops.
	ListStopNames(ctx context.Context) ([]string, error)
}
