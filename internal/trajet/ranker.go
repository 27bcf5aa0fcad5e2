package trajet

import (
	"fmt"
	"sort"
)

const (
	DefaultLimit = 5
	MinLimit     = 1
	MaxLimit     = 20
)

// ClampLimit maps a caller supplied limit into [MinLimit, MaxLimit].
// Zero or negative values select DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Ranker orders candidate routes.
type Ranker struct{}

// Rank sorts routes by descending score, keeping the input order of equal
// scores, and keeps the first limit entries.
func (Ranker) Rank(routes []RouteOption, limit int) []RankedRoute {
	limit = ClampLimit(limit)

	sorted := make([]RouteOption, len(routes))
	copy(sorted, routes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score() > sorted[j].Score()
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	ranked := make([]RankedRoute, 0, len(sorted))
	for _, route := range sorted {
		ranked = append(ranked, RankedRoute{
			Option:         route,
			Recommendation: Recommendation(route),
		})
	}
	return ranked
}

// Recommendation describes a route in one short phrase.
func Recommendation(route RouteOption) string {
	switch n := route.TransferCount(); {
	case route.Kind() == KindDirect:
		return "direct — no transfer needed"
	case n == 1:
		return "1 transfer — good option"
	default:
		return fmt.Sprintf("%d transfers — alternative option", n)
	}
}
