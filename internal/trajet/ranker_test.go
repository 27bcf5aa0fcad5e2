package trajet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoutes() []RouteOption {
	return []RouteOption{
		&TransferRoute{FirstLine: Line{ID: 1, Name: "T1"}, SecondLine: Line{ID: 2, Name: "T2"}},
		&DirectRoute{Line: Line{ID: 3, Name: "D1"}},
		&TransferRoute{FirstLine: Line{ID: 4, Name: "T3"}, SecondLine: Line{ID: 5, Name: "T4"}},
		&DirectRoute{Line: Line{ID: 6, Name: "D2"}},
	}
}

func TestRankDirectBeforeTransfer(t *testing.T) {
	ranked := Ranker{}.Rank(sampleRoutes(), 10)
	require.Len(t, ranked, 4)

	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		names = append(names, r.Option.Lines()[0].Name)
	}
	// stable: equal scores keep their input order
	assert.Equal(t, []string{"D1", "D2", "T1", "T3"}, names)

	assert.Equal(t, "direct — no transfer needed", ranked[0].Recommendation)
	assert.Equal(t, "1 transfer — good option", ranked[2].Recommendation)
}

func TestRankLengthIsMinOfRoutesAndLimit(t *testing.T) {
	routes := sampleRoutes()
	for limit := MinLimit; limit <= MaxLimit; limit++ {
		ranked := Ranker{}.Rank(routes, limit)
		assert.Len(t, ranked, min(len(routes), limit), "limit %d", limit)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	routes := sampleRoutes()
	first := routes[0]
	Ranker{}.Rank(routes, 2)
	assert.Same(t, first, routes[0])
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Ranker{}.Rank(nil, 5))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-3))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 12, ClampLimit(12))
	assert.Equal(t, MaxLimit, ClampLimit(500))
}

func TestScoreForTransfersIsNonIncreasing(t *testing.T) {
	assert.Equal(t, 100, ScoreForTransfers(0))
	assert.Equal(t, 60, ScoreForTransfers(1))
	for n := 0; n < 6; n++ {
		assert.GreaterOrEqual(t, ScoreForTransfers(n), ScoreForTransfers(n+1))
	}
}

type multiTransferRoute struct {
	TransferRoute
	transfers int
}

func (r *multiTransferRoute) TransferCount() int { return r.transfers }

func TestRecommendation(t *testing.T) {
	assert.Equal(t, "direct — no transfer needed", Recommendation(&DirectRoute{}))
	assert.Equal(t, "1 transfer — good option", Recommendation(&TransferRoute{}))
	assert.Equal(t, "2 transfers — alternative option", Recommendation(&multiTransferRoute{transfers: 2}))
}

func TestRouteOptionInvariants(t *testing.T) {
	direct := &DirectRoute{Line: Line{ID: 1}}
	assert.Equal(t, 0, direct.TransferCount())
	assert.Len(t, direct.Lines(), 1)

	transfer := &TransferRoute{FirstLine: Line{ID: 1}, SecondLine: Line{ID: 2}}
	assert.GreaterOrEqual(t, transfer.TransferCount(), 1)
	assert.Len(t, transfer.Lines(), transfer.TransferCount()+1)
	assert.Greater(t, direct.Score(), transfer.Score())
}
