package trajet

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"trajet.transit.mg/internal/geo"
	"trajet.transit.mg/internal/textnorm"
)

const (
	// DefaultMaxTransferCombinations bounds the (transfer stop, candidate line)
	// pairs examined by one transfer pass.
	DefaultMaxTransferCombinations = 5000

	// DefaultSuggestionCount is the number of alternative stop names returned
	// with a not-found error.
	DefaultSuggestionCount = 5
)

// FinderOptions tunes the work done by a Finder.
type FinderOptions struct {
	MaxTransferCombinations int
	SuggestionCount         int
}

func (o FinderOptions) withDefaults() FinderOptions {
	if o.MaxTransferCombinations <= 0 {
		o.MaxTransferCombinations = DefaultMaxTransferCombinations
	}
	if o.SuggestionCount <= 0 {
		o.SuggestionCount = DefaultSuggestionCount
	}
	return o
}

// SearchParams are the inputs of one route search after defaults.
type SearchParams struct {
	Depart             string
	Destination        string
	MaxTransfers       int
	MaxWalkingDistance float64
	Limit              int
}

// FinderResult holds the unsorted candidates of one search.
type FinderResult struct {
	DepartStops      []Stop
	DestinationStops []Stop
	Routes           []RouteOption

	// Truncated is set when the transfer pass hit MaxTransferCombinations.
	Truncated bool
}

// Finder discovers direct and single-transfer routes between two stop names.
type Finder struct {
	repo   StopRepository
	opts   FinderOptions
	logger *slog.Logger
}

func NewFinder(repo StopRepository, opts FinderOptions, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{repo: repo, opts: opts.withDefaults(), logger: logger}
}

// searchState caches repository reads for the duration of one Search call.
type searchState struct {
	lineStops   map[int64][]Stop
	connections map[string][]LineAtStop
}

func (f *Finder) Search(ctx context.Context, p SearchParams) (*FinderResult, error) {
	departStops, err := f.repo.FindStopsByName(ctx, p.Depart)
	if err != nil {
		return nil, storageErr("find departure stops", err)
	}
	if len(departStops) == 0 {
		return nil, f.notFound(ctx, CodeDepartureNotFound, p.Depart, "no stop matches the departure")
	}

	destinationStops, err := f.repo.FindStopsByName(ctx, p.Destination)
	if err != nil {
		return nil, storageErr("find destination stops", err)
	}
	if len(destinationStops) == 0 {
		return nil, f.notFound(ctx, CodeDestinationNotFound, p.Destination, "no stop matches the destination")
	}

	result := &FinderResult{
		DepartStops:      departStops,
		DestinationStops: destinationStops,
	}

	departRoutable := routable(departStops)
	destinationRoutable := routable(destinationStops)
	if len(departRoutable) == 0 || len(destinationRoutable) == 0 {
		return result, nil
	}

	state := &searchState{
		lineStops:   make(map[int64][]Stop),
		connections: make(map[string][]LineAtStop),
	}

	direct, err := f.directPass(ctx, state, departRoutable, destinationRoutable)
	if err != nil {
		return nil, err
	}
	result.Routes = append(result.Routes, direct...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(direct) < p.Limit && p.MaxTransfers >= 1 {
		transfers, truncated, err := f.transferPass(ctx, state, p, departRoutable, destinationRoutable)
		if err != nil {
			return nil, err
		}
		result.Routes = append(result.Routes, transfers...)
		result.Truncated = truncated
	}

	return result, nil
}

func (f *Finder) directPass(ctx context.Context, state *searchState, departStops, destinationStops []Stop) ([]RouteOption, error) {
	var routes []RouteOption
	emitted := make(map[int64]bool)

	for _, from := range departStops {
		for _, to := range destinationStops {
			if from.Line.ID != to.Line.ID || from.ID == to.ID || emitted[from.Line.ID] {
				continue
			}

			lineStops, err := f.stopsOfLine(ctx, state, from.Line.ID)
			if err != nil {
				return nil, err
			}
			leg := measureLeg(lineStops, from, to)

			emitted[from.Line.ID] = true
			route := &DirectRoute{
				Line:     *from.Line,
				From:     from,
				To:       to,
				Distance: leg.distance,
			}
			route.Steps = directInstructions(route, leg.forward)
			routes = append(routes, route)
		}
	}

	return routes, nil
}

type transferKey struct {
	departLineID   int64
	transferLineID int64
	arrivalStopID  int64
}

func (f *Finder) transferPass(ctx context.Context, state *searchState, p SearchParams, departStops, destinationStops []Stop) ([]RouteOption, bool, error) {
	const transferCount = 1
	if transferCount > p.MaxTransfers {
		return nil, false, nil
	}

	arrivalsByLine := make(map[int64][]Stop)
	for _, stop := range destinationStops {
		arrivalsByLine[stop.Line.ID] = append(arrivalsByLine[stop.Line.ID], stop)
	}

	var routes []RouteOption
	seen := make(map[transferKey]bool)
	visitedLines := make(map[int64]bool)
	examined := 0

	for _, from := range departStops {
		departLine := *from.Line
		if visitedLines[departLine.ID] {
			continue
		}
		visitedLines[departLine.ID] = true

		departLineStops, err := f.stopsOfLine(ctx, state, departLine.ID)
		if err != nil {
			return nil, false, err
		}

		for _, transferStop := range departLineStops {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
			if transferStop.ID == from.ID {
				continue
			}

			connections, err := f.linesAtStopName(ctx, state, transferStop.Name)
			if err != nil {
				return nil, false, err
			}

			for _, conn := range connections {
				if conn.Line.ID == departLine.ID {
					continue
				}

				examined++
				if examined > f.opts.MaxTransferCombinations {
					f.logger.Warn("transfer search truncated",
						slog.String("depart", p.Depart),
						slog.String("destination", p.Destination),
						slog.Int("max_combinations", f.opts.MaxTransferCombinations),
						slog.Int("routes_found", len(routes)))
					return routes, true, nil
				}

				for _, to := range arrivalsByLine[conn.Line.ID] {
					key := transferKey{departLine.ID, conn.Line.ID, to.ID}
					if seen[key] || conn.Stop.ID == to.ID {
						continue
					}

					walk := walkingDistance(transferStop, conn.Stop)
					if walk > p.MaxWalkingDistance {
						continue
					}

					secondLineStops, err := f.stopsOfLine(ctx, state, conn.Line.ID)
					if err != nil {
						return nil, false, err
					}

					firstLeg := measureLeg(departLineStops, from, transferStop)
					secondLeg := measureLeg(secondLineStops, conn.Stop, to)

					seen[key] = true
					route := &TransferRoute{
						FirstLine:         departLine,
						SecondLine:        conn.Line,
						From:              from,
						Transfer:          transferStop,
						Connection:        conn.Stop,
						To:                to,
						FirstLegDistance:  firstLeg.distance,
						SecondLegDistance: secondLeg.distance,
						Walk:              walk,
					}
					route.Steps = transferInstructions(route, firstLeg.forward, secondLeg.forward)
					routes = append(routes, route)
				}
			}
		}
	}

	return routes, false, nil
}

func (f *Finder) stopsOfLine(ctx context.Context, state *searchState, lineID int64) ([]Stop, error) {
	if stops, ok := state.lineStops[lineID]; ok {
		return stops, nil
	}
	stops, err := f.repo.FindStopsByLineID(ctx, lineID)
	if err != nil {
		return nil, storageErr("find stops by line", err)
	}
	state.lineStops[lineID] = stops
	return stops, nil
}

func (f *Finder) linesAtStopName(ctx context.Context, state *searchState, name string) ([]LineAtStop, error) {
	key := textnorm.Normalize(name)
	if lines, ok := state.connections[key]; ok {
		return lines, nil
	}
	lines, err := f.repo.FindLinesByStopName(ctx, name)
	if err != nil {
		return nil, storageErr("find lines by stop name", err)
	}
	state.connections[key] = lines
	return lines, nil
}

func (f *Finder) notFound(ctx context.Context, code ErrorCode, query, message string) error {
	suggestions, err := f.Suggest(ctx, query)
	if err != nil {
		return err
	}
	return &NotFoundError{
		Code:        code,
		Message:     message,
		Suggestions: suggestions,
	}
}

// Suggest returns up to SuggestionCount stored stop names, the ones sharing
// words with query first. It only returns an empty list when no stop exists.
func (f *Finder) Suggest(ctx context.Context, query string) ([]string, error) {
	names, err := f.repo.ListStopNames(ctx)
	if err != nil {
		return nil, storageErr("list stop names", err)
	}

	type candidate struct {
		name  string
		score int
	}

	queryTokens := textnorm.Tokens(query)
	seen := make(map[string]bool, len(names))
	candidates := make([]candidate, 0, len(names))
	for _, name := range names {
		key := textnorm.Normalize(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, candidate{name: name, score: similarity(queryTokens, strings.Fields(key))})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	suggestions := make([]string, 0, f.opts.SuggestionCount)
	for _, c := range candidates {
		if len(suggestions) == f.opts.SuggestionCount {
			break
		}
		suggestions = append(suggestions, c.name)
	}
	return suggestions, nil
}

// similarity counts shared words, with partial credit for a common prefix.
func similarity(queryTokens, nameTokens []string) int {
	score := 0
	for _, q := range queryTokens {
		for _, n := range nameTokens {
			switch {
			case q == n:
				score += 3
			case strings.HasPrefix(n, prefix(q, 3)) || strings.HasPrefix(q, prefix(n, 3)):
				score++
			}
		}
	}
	return score
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func routable(stops []Stop) []Stop {
	out := make([]Stop, 0, len(stops))
	for _, stop := range stops {
		if stop.Line != nil {
			out = append(out, stop)
		}
	}
	return out
}

type leg struct {
	distance float64
	forward  bool
}

// measureLeg sums the distances between consecutive stops of a line from
// `from` to `to`. When either stop is missing from the line it falls back to
// the straight-line distance.
func measureLeg(lineStops []Stop, from, to Stop) leg {
	i, j := indexOf(lineStops, from.ID), indexOf(lineStops, to.ID)
	if i < 0 || j < 0 {
		return leg{distance: straightDistance(from, to), forward: true}
	}

	forward := i <= j
	lo, hi := i, j
	if !forward {
		lo, hi = j, i
	}

	total := 0.0
	var prev *Stop
	for k := lo; k <= hi; k++ {
		stop := lineStops[k]
		if !stop.HasCoordinates() {
			continue
		}
		if prev != nil {
			total += geo.Distance(*prev.Latitude, *prev.Longitude, *stop.Latitude, *stop.Longitude)
		}
		prev = &lineStops[k]
	}
	return leg{distance: total, forward: forward}
}

func indexOf(stops []Stop, id int64) int {
	for i, stop := range stops {
		if stop.ID == id {
			return i
		}
	}
	return -1
}

func straightDistance(a, b Stop) float64 {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return 0
	}
	return geo.Distance(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
}

// walkingDistance is the distance between two stop rows sharing a name.
// Rows without coordinates are treated as the same physical stop.
func walkingDistance(a, b Stop) float64 {
	if a.ID == b.ID {
		return 0
	}
	return straightDistance(a, b)
}
