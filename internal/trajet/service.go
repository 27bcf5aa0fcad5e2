package trajet

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"trajet.transit.mg/internal/logging"
)

const (
	DefaultMaxTransfers       = 2
	DefaultMaxWalkingDistance = 500.0
	DefaultNearbyRadius       = 500.0

	noRouteHint = "Try increasing maxWalkingDistance or maxTransfers, or check the stop names."
)

// Query is a raw trip search request. Nil fields select the defaults.
type Query struct {
	Depart             string
	Destination        string
	MaxTransfers       *int
	MaxWalkingDistance *float64
	Limit              *int
}

// Options configures a Service.
type Options struct {
	Finder FinderOptions
}

// Service is the entry point of the trip search. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	repo   StopRepository
	finder *Finder
	ranker Ranker
	logger *slog.Logger
}

func NewService(repo StopRepository, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		finder: NewFinder(repo, opts.Finder, logger),
		logger: logger,
	}
}

// Search validates q, finds and ranks the candidate routes.
func (s *Service) Search(ctx context.Context, q Query) (*SearchResult, error) {
	start := time.Now()

	params, err := searchParams(q)
	if err != nil {
		return nil, err
	}

	found, err := s.finder.Search(ctx, params)
	if err != nil {
		s.logSearch(params, start, 0, err)
		return nil, err
	}

	depart := Endpoint{Query: params.Depart, Stops: found.DepartStops}
	destination := Endpoint{Query: params.Destination, Stops: found.DestinationStops}

	if len(found.Routes) == 0 {
		err := &NotFoundError{
			Code:        CodeNoRouteFound,
			Message:     "no route connects the departure and the destination",
			Depart:      &depart,
			Destination: &destination,
			Hint:        noRouteHint,
		}
		s.logSearch(params, start, 0, err)
		return nil, err
	}

	result := &SearchResult{
		Depart:      depart,
		Destination: destination,
		Routes:      s.ranker.Rank(found.Routes, params.Limit),
		TotalFound:  len(found.Routes),
		Truncated:   found.Truncated,
		Filters: Filters{
			MaxTransfers:       params.MaxTransfers,
			MaxWalkingDistance: params.MaxWalkingDistance,
			Limit:              params.Limit,
		},
	}
	s.logSearch(params, start, result.TotalFound, nil)
	return result, nil
}

// Suggest exposes the stop-name suggestions used in not-found errors.
func (s *Service) Suggest(ctx context.Context, query string) ([]string, error) {
	return s.finder.Suggest(ctx, query)
}

func searchParams(q Query) (SearchParams, error) {
	depart := strings.TrimSpace(q.Depart)
	destination := strings.TrimSpace(q.Destination)

	var missing []string
	if depart == "" {
		missing = append(missing, "depart")
	}
	if destination == "" {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return SearchParams{}, &ValidationError{
			Code:    CodeMissingParameters,
			Message: "depart and destination are required",
			Fields:  missing,
		}
	}

	params := SearchParams{
		Depart:             depart,
		Destination:        destination,
		MaxTransfers:       DefaultMaxTransfers,
		MaxWalkingDistance: DefaultMaxWalkingDistance,
		Limit:              DefaultLimit,
	}

	if q.MaxTransfers != nil {
		if *q.MaxTransfers < 0 {
			return SearchParams{}, &ValidationError{
				Code:    CodeInvalidParameter,
				Message: "maxTransfers must be non-negative",
				Fields:  []string{"maxTransfers"},
			}
		}
		params.MaxTransfers = *q.MaxTransfers
	}
	if q.MaxWalkingDistance != nil {
		if w := *q.MaxWalkingDistance; w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return SearchParams{}, &ValidationError{
				Code:    CodeInvalidParameter,
				Message: "maxWalkingDistance must be a non-negative finite number",
				Fields:  []string{"maxWalkingDistance"},
			}
		}
		params.MaxWalkingDistance = *q.MaxWalkingDistance
	}
	if q.Limit != nil {
		params.Limit = ClampLimit(*q.Limit)
	}

	return params, nil
}

func (s *Service) logSearch(p SearchParams, start time.Time, found int, err error) {
	attrs := []slog.Attr{
		slog.String("depart", p.Depart),
		slog.String("destination", p.Destination),
		slog.Int("routes_found", found),
		slog.Duration("duration", time.Since(start)),
		slog.String("component", "trajet_search"),
	}
	if err != nil {
		attrs = append(attrs, slog.String("outcome", string(CodeOf(err))))
	}
	logging.LogOperation(s.logger, "trajet_search", attrs...)
}
