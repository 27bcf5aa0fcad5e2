package trajet

import (
	"context"
	"fmt"
	"strings"
)

// FindStops returns the routable and orphan stops whose name fuzzily matches
// query. An unmatched query is not an error.
func (s *Service) FindStops(ctx context.Context, query string) ([]Stop, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{
			Code:    CodeMissingParameters,
			Message: "query is required",
			Fields:  []string{"query"},
		}
	}

	stops, err := s.repo.FindStopsByName(ctx, query)
	if err != nil {
		return nil, storageErr("find stops by name", err)
	}
	return stops, nil
}

// LineStops returns a line and its stops in line order. Lines that are
// unknown or not yet accepted are reported as not found.
func (s *Service) LineStops(ctx context.Context, lineID int64) (Line, []Stop, error) {
	stops, err := s.repo.FindStopsByLineID(ctx, lineID)
	if err != nil {
		return Line{}, nil, storageErr("find stops by line", err)
	}
	if len(stops) == 0 || stops[0].Line == nil {
		return Line{}, nil, &NotFoundError{
			Code:    CodeLineNotFound,
			Message: fmt.Sprintf("line %d has no visible stops", lineID),
		}
	}
	return *stops[0].Line, stops, nil
}
