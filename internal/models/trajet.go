package models

import (
	"math"

	"github.com/twpayne/go-polyline"

	"trajet.transit.mg/internal/trajet"
)

type Line struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Depart   string  `json:"depart"`
	Terminus string  `json:"terminus"`
	Fare     float64 `json:"fare"`
	Status   string  `json:"status"`
}

type Stop struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	LineID    *int64   `json:"lineId,omitempty"`
	LineName  string   `json:"lineName,omitempty"`
}

// RouteOption is the wire form of a ranked itinerary. Distances are whole meters.
type RouteOption struct {
	Type              string   `json:"type"`
	Lines             []Line   `json:"lines"`
	Stops             []Stop   `json:"stops"`
	TransferCount     int      `json:"transferCount"`
	EstimatedDistance float64  `json:"estimatedDistance"`
	TotalDistance     float64  `json:"totalDistance"`
	WalkingDistance   float64  `json:"walkingDistance"`
	Score             int      `json:"score"`
	Instructions      []string `json:"instructions"`
	Recommendation    string   `json:"recommendation"`
	Polyline          string   `json:"polyline,omitempty"`
}

type Endpoint struct {
	Query string `json:"query"`
	Stops []Stop `json:"stops"`
}

type Filters struct {
	MaxTransfers       int     `json:"maxTransfers"`
	MaxWalkingDistance float64 `json:"maxWalkingDistance"`
	Limit              int     `json:"limit"`
}

type SearchData struct {
	Depart      Endpoint      `json:"depart"`
	Destination Endpoint      `json:"destination"`
	Routes      []RouteOption `json:"routes"`
	TotalFound  int           `json:"totalFound"`
	Truncated   bool          `json:"truncated"`
	Filters     Filters       `json:"filters"`
}

// NoRouteData echoes what both ends of a failed search resolved to.
type NoRouteData struct {
	Depart      Endpoint `json:"depart"`
	Destination Endpoint `json:"destination"`
	Hint        string   `json:"hint,omitempty"`
}

type NearbyStop struct {
	Stop
	Distance float64 `json:"distance"`
}

type NearbyData struct {
	Stops  []NearbyStop `json:"stops"`
	Count  int          `json:"count"`
	Radius float64      `json:"radius"`
}

type StopList struct {
	Stops []Stop `json:"stops"`
	Count int    `json:"count"`
}

type LineStops struct {
	Line  Line   `json:"line"`
	Stops []Stop `json:"stops"`
}

func meters(d float64) float64 {
	return math.Round(d)
}

func NewLine(l trajet.Line) Line {
	return Line{
		ID:       l.ID,
		Name:     l.Name,
		Depart:   l.Depart,
		Terminus: l.Terminus,
		Fare:     l.Fare,
		Status:   string(l.Status),
	}
}

func NewStop(s trajet.Stop) Stop {
	stop := Stop{
		ID:        s.ID,
		Name:      s.Name,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
	if s.Line != nil {
		id := s.Line.ID
		stop.LineID = &id
		stop.LineName = s.Line.Name
	}
	return stop
}

func NewStops(stops []trajet.Stop) []Stop {
	out := make([]Stop, 0, len(stops))
	for _, s := range stops {
		out = append(out, NewStop(s))
	}
	return out
}

func NewEndpoint(e trajet.Endpoint) Endpoint {
	return Endpoint{Query: e.Query, Stops: NewStops(e.Stops)}
}

func NewRouteOption(r trajet.RankedRoute) RouteOption {
	option := r.Option
	lines := make([]Line, 0, len(option.Lines()))
	for _, l := range option.Lines() {
		lines = append(lines, NewLine(l))
	}
	instructions := option.Instructions()
	if instructions == nil {
		instructions = []string{}
	}
	return RouteOption{
		Type:              string(option.Kind()),
		Lines:             lines,
		Stops:             NewStops(option.Stops()),
		TransferCount:     option.TransferCount(),
		EstimatedDistance: meters(option.EstimatedDistance()),
		TotalDistance:     meters(option.TotalDistance()),
		WalkingDistance:   meters(option.WalkingDistance()),
		Score:             option.Score(),
		Instructions:      instructions,
		Recommendation:    r.Recommendation,
		Polyline:          EncodeStops(option.Stops()),
	}
}

func NewSearchData(result *trajet.SearchResult) SearchData {
	routes := make([]RouteOption, 0, len(result.Routes))
	for _, r := range result.Routes {
		routes = append(routes, NewRouteOption(r))
	}
	return SearchData{
		Depart:      NewEndpoint(result.Depart),
		Destination: NewEndpoint(result.Destination),
		Routes:      routes,
		TotalFound:  result.TotalFound,
		Truncated:   result.Truncated,
		Filters: Filters{
			MaxTransfers:       result.Filters.MaxTransfers,
			MaxWalkingDistance: result.Filters.MaxWalkingDistance,
			Limit:              result.Filters.Limit,
		},
	}
}

func NewNearbyData(stops []trajet.NearbyStop, radius float64) NearbyData {
	out := make([]NearbyStop, 0, len(stops))
	for _, s := range stops {
		out = append(out, NearbyStop{Stop: NewStop(s.Stop), Distance: meters(s.Distance)})
	}
	return NearbyData{Stops: out, Count: len(out), Radius: radius}
}

// EncodeStops returns the encoded polyline through the stops that have
// coordinates, or "" when fewer than two do.
func EncodeStops(stops []trajet.Stop) string {
	coords := make([][]float64, 0, len(stops))
	for _, s := range stops {
		if s.HasCoordinates() {
			coords = append(coords, []float64{*s.Latitude, *s.Longitude})
		}
	}
	if len(coords) < 2 {
		return ""
	}
	return string(polyline.EncodeCoords(coords))
}
