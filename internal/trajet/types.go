package trajet

// LineStatus is the moderation state of a contributed line.
type LineStatus string

const (
	LineStatusPending  LineStatus = "Pending"
	LineStatusAccepted LineStatus = "Accepted"
)

// Line is a bus line with a fixed fare.
type Line struct {
	ID         int64
	Name       string
	Fare       float64
	Depart     string
	Terminus   string
	Status     LineStatus
	DistrictID *int64
	CreatedBy  string
}

// Stop is a physical bus stop. A stop row belongs to at most one line; a stop
// served by several lines is stored once per line.
type Stop struct {
	ID         int64
	Name       string
	Latitude   *float64
	Longitude  *float64
	Line       *Line
	DistrictID *int64
	CreatedBy  string
}

// HasCoordinates reports whether both coordinates are set.
func (s Stop) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// LineID returns the owning line id, if any.
func (s Stop) LineID() (int64, bool) {
	if s.Line == nil {
		return 0, false
	}
	return s.Line.ID, true
}

// LineAtStop pairs a line with its stop row for a given stop name.
type LineAtStop struct {
	Line Line
	Stop Stop
}

// RouteKind discriminates the RouteOption variants.
type RouteKind string

const (
	KindDirect       RouteKind = "direct"
	KindWithTransfer RouteKind = "with_transfer"
)

const (
	directScore       = 100
	transferBaseScore = 70
	transferPenalty   = 10
)

// ScoreForTransfers returns the fixed score of an itinerary with n transfers.
// It never increases with n.
func ScoreForTransfers(n int) int {
	if n <= 0 {
		return directScore
	}
	return transferBaseScore - transferPenalty*n
}

// RouteOption is a candidate itinerary. The concrete types are DirectRoute
// and TransferRoute.
type RouteOption interface {
	Kind() RouteKind
	Lines() []Line
	Stops() []Stop
	TransferCount() int
	EstimatedDistance() float64
	WalkingDistance() float64
	TotalDistance() float64
	Score() int
	Instructions() []string

	isRouteOption()
}

// DirectRoute rides a single line from From to To.
type DirectRoute struct {
	Line     Line
	From     Stop
	To       Stop
	Distance float64
	Steps    []string
}

func (r *DirectRoute) Kind() RouteKind            { return KindDirect }
func (r *DirectRoute) Lines() []Line              { return []Line{r.Line} }
func (r *DirectRoute) Stops() []Stop              { return []Stop{r.From, r.To} }
func (r *DirectRoute) TransferCount() int         { return 0 }
func (r *DirectRoute) EstimatedDistance() float64 { return r.Distance }
func (r *DirectRoute) WalkingDistance() float64   { return 0 }
func (r *DirectRoute) TotalDistance() float64     { return r.Distance }
func (r *DirectRoute) Score() int                 { return ScoreForTransfers(0) }
func (r *DirectRoute) Instructions() []string     { return r.Steps }
func (r *DirectRoute) isRouteOption()             {}

// TransferRoute rides FirstLine from From to Transfer, walks to the stop row
// of SecondLine with the same name (Connection), then rides SecondLine to To.
type TransferRoute struct {
	FirstLine  Line
	SecondLine Line
	From       Stop
	Transfer   Stop
	Connection Stop
	To         Stop

	FirstLegDistance  float64
	SecondLegDistance float64
	Walk              float64
	Steps             []string
}

func (r *TransferRoute) Kind() RouteKind    { return KindWithTransfer }
func (r *TransferRoute) Lines() []Line      { return []Line{r.FirstLine, r.SecondLine} }
func (r *TransferRoute) Stops() []Stop      { return []Stop{r.From, r.Transfer, r.To} }
func (r *TransferRoute) TransferCount() int { return len(r.Lines()) - 1 }
func (r *TransferRoute) EstimatedDistance() float64 {
	return r.FirstLegDistance + r.SecondLegDistance
}
func (r *TransferRoute) WalkingDistance() float64 { return r.Walk }
func (r *TransferRoute) TotalDistance() float64   { return r.EstimatedDistance() + r.Walk }
func (r *TransferRoute) Score() int               { return ScoreForTransfers(r.TransferCount()) }
func (r *TransferRoute) Instructions() []string   { return r.Steps }
func (r *TransferRoute) isRouteOption()           {}

// RankedRoute is a RouteOption kept by the ranker, with its recommendation text.
type RankedRoute struct {
	Option         RouteOption
	Recommendation string
}

// Endpoint echoes one side of a query with the stops it resolved to.
type Endpoint struct {
	Query string
	Stops []Stop
}

// Filters are the effective search parameters after defaults were applied.
type Filters struct {
	MaxTransfers       int
	MaxWalkingDistance float64
	Limit              int
}

// SearchResult is the successful outcome of Service.Search.
type SearchResult struct {
	Depart      Endpoint
	Destination Endpoint
	Routes      []RankedRoute
	TotalFound  int
	Truncated   bool
	Filters     Filters
}

// NearbyStop is a stop together with its distance from the query point.
type NearbyStop struct {
	Stop     Stop
	Distance float64
}
