package trajetdb

import (
	"context"
	"database/sql"
	"fmt"

	"trajet.transit.mg/internal/geo"
	"trajet.transit.mg/internal/logging"
	"trajet.transit.mg/internal/textnorm"
	"trajet.transit.mg/internal/trajet"
)

// stopColumns selects a stop joined with its line; the line columns are NULL
// for a stop without one.
const stopColumns = `
	s.id, s.name, s.latitude, s.longitude, s.district_id, s.created_by,
	l.id, l.name, l.fare, l.depart, l.terminus, l.status, l.district_id, l.created_by`

// visibleLine keeps orphan stops and stops of accepted lines.
const visibleLine = `(s.line_id IS NULL OR l.status = 'Accepted')`

var _ trajet.StopRepository = (*Client)(nil)

// FindStopsByName returns stops whose normalized name contains the normalized query.
func (c *Client) FindStopsByName(ctx context.Context, query string) ([]trajet.Stop, error) {
	key := textnorm.Normalize(query)
	if key == "" {
		return nil, nil
	}
	return c.queryStops(ctx, "find_stops_by_name", `
		SELECT `+stopColumns+`
		FROM stops s
		LEFT JOIN lines l ON l.id = s.line_id
		WHERE instr(s.name_key, ?) > 0 AND `+visibleLine+`
		ORDER BY s.id`, key)
}

// FindStopsByLineID returns the stops of an accepted line in line order.
func (c *Client) FindStopsByLineID(ctx context.Context, lineID int64) ([]trajet.Stop, error) {
	return c.queryStops(ctx, "find_stops_by_line", `
		SELECT `+stopColumns+`
		FROM stops s
		JOIN lines l ON l.id = s.line_id
		WHERE s.line_id = ? AND l.status = 'Accepted'
		ORDER BY s.id`, lineID)
}

// FindLinesByStopName returns each accepted line with a stop row named name.
func (c *Client) FindLinesByStopName(ctx context.Context, name string) ([]trajet.LineAtStop, error) {
	key := textnorm.Normalize(name)
	if key == "" {
		return nil, nil
	}
	stops, err := c.queryStops(ctx, "find_lines_by_stop_name", `
		SELECT `+stopColumns+`
		FROM stops s
		JOIN lines l ON l.id = s.line_id
		WHERE s.name_key = ? AND l.status = 'Accepted'
		ORDER BY l.id, s.id`, key)
	if err != nil {
		return nil, err
	}

	out := make([]trajet.LineAtStop, 0, len(stops))
	for _, stop := range stops {
		out = append(out, trajet.LineAtStop{Line: *stop.Line, Stop: stop})
	}
	return out, nil
}

// FindStopsNear returns the stops whose R*Tree entry overlaps the box around
// the circle of radius meters centred on lat/lon.
func (c *Client) FindStopsNear(ctx context.Context, lat, lon, radius float64) ([]trajet.Stop, error) {
	b := geo.BoundsForRadius(lat, lon, radius)
	return c.queryStops(ctx, "find_stops_near", `
		SELECT `+stopColumns+`
		FROM stops_rtree r
		JOIN stops s ON s.id = r.id
		LEFT JOIN lines l ON l.id = s.line_id
		WHERE r.max_lat >= ? AND r.min_lat <= ?
		  AND r.max_lon >= ? AND r.min_lon <= ?
		  AND `+visibleLine+`
		ORDER BY s.id`, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
}

// ListStopNames returns the distinct stop names visible to riders.
func (c *Client) ListStopNames(ctx context.Context) (names []string, err error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT DISTINCT s.name
		FROM stops s
		LEFT JOIN lines l ON l.id = s.line_id
		WHERE `+visibleLine+`
		ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("list_stop_names: %w", err)
	}
	defer logging.HandleDeferredError(&err, rows.Close, c.logger, "list_stop_names")

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list_stop_names: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list_stop_names: %w", err)
	}
	return names, nil
}

func (c *Client) queryStops(ctx context.Context, operation, query string, args ...any) (stops []trajet.Stop, err error) {
	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer logging.HandleDeferredError(&err, rows.Close, c.logger, operation)

	for rows.Next() {
		stop, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		stops = append(stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return stops, nil
}

func scanStop(rows *sql.Rows) (trajet.Stop, error) {
	var (
		stop          trajet.Stop
		lat, lon      sql.NullFloat64
		districtID    sql.NullInt64
		lineID        sql.NullInt64
		lineName      sql.NullString
		lineFare      sql.NullFloat64
		lineDepart    sql.NullString
		lineTerminus  sql.NullString
		lineStatus    sql.NullString
		lineDistrict  sql.NullInt64
		lineCreatedBy sql.NullString
	)
	err := rows.Scan(
		&stop.ID, &stop.Name, &lat, &lon, &districtID, &stop.CreatedBy,
		&lineID, &lineName, &lineFare, &lineDepart, &lineTerminus, &lineStatus, &lineDistrict, &lineCreatedBy,
	)
	if err != nil {
		return trajet.Stop{}, err
	}

	stop.Latitude = fromNullFloat64(lat)
	stop.Longitude = fromNullFloat64(lon)
	stop.DistrictID = fromNullInt64(districtID)
	if lineID.Valid {
		stop.Line = &trajet.Line{
			ID:         lineID.Int64,
			Name:       lineName.String,
			Fare:       lineFare.Float64,
			Depart:     lineDepart.String,
			Terminus:   lineTerminus.String,
			Status:     trajet.LineStatus(lineStatus.String),
			DistrictID: fromNullInt64(lineDistrict),
			CreatedBy:  lineCreatedBy.String,
		}
	}
	return stop, nil
}
