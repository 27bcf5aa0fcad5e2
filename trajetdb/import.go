package trajetdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jamespfennell/gtfs"

	"trajet.transit.mg/internal/logging"
	"trajet.transit.mg/internal/trajet"
)

// ImportResult summarises one GTFS import.
type ImportResult struct {
	LinesCreated int
	LinesSkipped int
	StopsCreated int
	Warnings     int
}

// ImportGTFS parses a GTFS zip and stores each route as an accepted line whose
// stops are the stops of the route's longest trip, in stop_sequence order.
// Routes imported before are skipped, so re-importing a feed is a no-op.
func (c *Client) ImportGTFS(ctx context.Context, data []byte) error {
	staticData, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return fmt.Errorf("parsing GTFS: %w", err)
	}

	result, err := c.importStatic(ctx, staticData)
	if err != nil {
		return err
	}
	result.Warnings = len(staticData.Warnings)

	logging.LogOperation(c.logger, "gtfs_data_imported",
		slog.Int("lines_created", result.LinesCreated),
		slog.Int("lines_skipped", result.LinesSkipped),
		slog.Int("stops_created", result.StopsCreated),
		slog.Int("warnings", result.Warnings),
		slog.Duration("duration", c.importRuntime))
	return nil
}

func (c *Client) importStatic(ctx context.Context, staticData *gtfs.Static) (result ImportResult, err error) {
	startTime := time.Now()
	defer func() {
		c.importRuntime = time.Since(startTime)
	}()

	longest := longestTripPerRoute(staticData.Trips)

	err = c.withTx(ctx, "import_gtfs", func(tx *sql.Tx) error {
		for _, route := range staticData.Routes {
			trip, ok := longest[route.Id]
			if !ok {
				continue
			}

			var existing int64
			err := tx.QueryRowContext(ctx, `SELECT id FROM lines WHERE external_id = ?`, route.Id).Scan(&existing)
			if err == nil {
				result.LinesSkipped++
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("import_gtfs: route %s: %w", route.Id, err)
			}

			stopTimes := orderedStopTimes(trip)
			first, last := stopTimes[0].Stop, stopTimes[len(stopTimes)-1].Stop
			line := trajet.Line{
				Name:      pickFirstAvailable(route.ShortName, route.LongName, route.Id),
				Depart:    first.Name,
				Terminus:  last.Name,
				Status:    trajet.LineStatusAccepted,
				CreatedBy: "gtfs",
			}
			lineID, err := createLine(ctx, tx, line, route.Id)
			if err != nil {
				return fmt.Errorf("import_gtfs: route %s: %w", route.Id, err)
			}
			result.LinesCreated++

			for _, st := range stopTimes {
				stop := trajet.Stop{
					Name:      pickFirstAvailable(st.Stop.Name, st.Stop.Id),
					Latitude:  st.Stop.Latitude,
					Longitude: st.Stop.Longitude,
					CreatedBy: "gtfs",
				}
				if _, err := createStop(ctx, tx, stop, &lineID); err != nil {
					return fmt.Errorf("import_gtfs: stop %s: %w", st.Stop.Id, err)
				}
				result.StopsCreated++
			}
		}
		return nil
	})
	return result, err
}

// longestTripPerRoute picks, per route id, the trip visiting the most stops.
// Ties keep the first trip in feed order.
func longestTripPerRoute(trips []gtfs.ScheduledTrip) map[string]*gtfs.ScheduledTrip {
	out := make(map[string]*gtfs.ScheduledTrip)
	for i := range trips {
		trip := &trips[i]
		if trip.Route == nil || countStops(trip) == 0 {
			continue
		}
		if current, ok := out[trip.Route.Id]; !ok || countStops(trip) > countStops(current) {
			out[trip.Route.Id] = trip
		}
	}
	return out
}

func countStops(trip *gtfs.ScheduledTrip) int {
	n := 0
	for _, st := range trip.StopTimes {
		if st.Stop != nil {
			n++
		}
	}
	return n
}

func orderedStopTimes(trip *gtfs.ScheduledTrip) []gtfs.ScheduledStopTime {
	out := make([]gtfs.ScheduledStopTime, 0, len(trip.StopTimes))
	for _, st := range trip.StopTimes {
		if st.Stop != nil {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StopSequence < out[j].StopSequence })
	return out
}
