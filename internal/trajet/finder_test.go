package trajet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams(depart, destination string) SearchParams {
	return SearchParams{
		Depart:             depart,
		Destination:        destination,
		MaxTransfers:       DefaultMaxTransfers,
		MaxWalkingDistance: DefaultMaxWalkingDistance,
		Limit:              DefaultLimit,
	}
}

func TestFinderDirectRoute(t *testing.T) {
	finder := NewFinder(fianarantsoaFixture(), FinderOptions{}, nil)

	result, err := finder.Search(context.Background(), defaultParams("Adventiste Isada", "Soatsihadino"))
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)

	route, ok := result.Routes[0].(*DirectRoute)
	require.True(t, ok, "expected a direct route, got %T", result.Routes[0])
	assert.Equal(t, KindDirect, route.Kind())
	assert.Equal(t, 100, route.Score())
	assert.Equal(t, 0, route.TransferCount())
	assert.Equal(t, "Bus 39", route.Line.Name)
	assert.Len(t, route.Lines(), 1)
	// Haversine over the stop coordinates, not the ~1248 m road distance riders quote.
	assert.InDelta(t, 1156.75, route.EstimatedDistance(), 1.0)
	assert.Equal(t, route.EstimatedDistance(), route.TotalDistance())
	assert.Equal(t, []string{
		"Take Bus 39 at Adventiste Isada (towards Andohanivory)",
		"Get off at Soatsihadino",
		"Total fare: 600",
	}, route.Instructions())
}

func TestFinderTransferRoute(t *testing.T) {
	finder := NewFinder(fianarantsoaFixture(), FinderOptions{}, nil)

	result, err := finder.Search(context.Background(), defaultParams("Adventiste Isada", "ENS Fianarantsoa"))
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)

	route, ok := result.Routes[0].(*TransferRoute)
	require.True(t, ok, "expected a transfer route, got %T", result.Routes[0])
	assert.Equal(t, KindWithTransfer, route.Kind())
	assert.Equal(t, 1, route.TransferCount())
	assert.Equal(t, 60, route.Score())
	require.Len(t, route.Lines(), 2)
	assert.Equal(t, "Bus 39", route.Lines()[0].Name)
	assert.Equal(t, "Bus 40", route.Lines()[1].Name)

	stops := route.Stops()
	require.Len(t, stops, 3)
	assert.Equal(t, "Adventiste Isada", stops[0].Name)
	assert.Equal(t, "Police Routiere Andohanivory", stops[1].Name)
	assert.Equal(t, "ENS Fianarantsoa", stops[2].Name)

	assert.Greater(t, route.WalkingDistance(), 0.0)
	assert.Less(t, route.WalkingDistance(), 20.0)
	assert.InDelta(t, route.EstimatedDistance()+route.WalkingDistance(), route.TotalDistance(), 1e-9)
	assert.Contains(t, route.Instructions(), "Transfer to Bus 40 at Police Routiere Andohanivory (towards Ampitatafika)")
	assert.Contains(t, route.Instructions(), "Total fare: 1200")
}

func TestFinderLineOrderDistance(t *testing.T) {
	repo := fianarantsoaFixture()
	finder := NewFinder(repo, FinderOptions{}, nil)

	result, err := finder.Search(context.Background(), defaultParams("Adventiste Isada", "Police Routiere"))
	require.NoError(t, err)

	var direct *DirectRoute
	for _, r := range result.Routes {
		if d, ok := r.(*DirectRoute); ok {
			direct = d
		}
	}
	require.NotNil(t, direct)

	stops, err := repo.FindStopsByLineID(context.Background(), 39)
	require.NoError(t, err)
	want := straightDistance(stops[0], stops[1]) + straightDistance(stops[1], stops[2])
	assert.InDelta(t, want, direct.EstimatedDistance(), 1e-6)
}

func TestFinderReverseDirection(t *testing.T) {
	finder := NewFinder(fianarantsoaFixture(), FinderOptions{}, nil)

	result, err := finder.Search(context.Background(), defaultParams("Soatsihadino", "Adventiste Isada"))
	require.NoError(t, err)
	require.NotEmpty(t, result.Routes)
	assert.Equal(t, "Take Bus 39 at Soatsihadino (towards Isada)", result.Routes[0].Instructions()[0])
}

func TestFinderDeduplicatesDirectLines(t *testing.T) {
	repo := newFakeRepository()
	bus1 := repo.addLine(1, "Bus 1", "A", "B", 500)
	repo.addStop(1, "Gare Nord", -21.45, 47.08, bus1)
	repo.addStop(2, "Gare Nord Annexe", -21.451, 47.081, bus1)
	repo.addStop(3, "Marche Sud", -21.46, 47.09, bus1)
	repo.addStop(4, "Marche Sud Annexe", -21.461, 47.091, bus1)

	finder := NewFinder(repo, FinderOptions{}, nil)
	result, err := finder.Search(context.Background(), defaultParams("gare nord", "marche sud"))
	require.NoError(t, err)

	direct := 0
	for _, r := range result.Routes {
		if r.Kind() == KindDirect {
			direct++
		}
	}
	assert.Equal(t, 1, direct, "one direct route per line regardless of matching stop pairs")
}

func TestFinderSkipsTransferPassWhenEnoughDirectRoutes(t *testing.T) {
	repo := fianarantsoaFixture()
	finder := NewFinder(repo, FinderOptions{}, nil)

	params := defaultParams("Adventiste Isada", "Soatsihadino")
	params.Limit = 1

	before := repo.calls.Load()
	result, err := finder.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)

	// two name lookups plus one line lookup for the direct distance
	assert.Equal(t, int64(3), repo.calls.Load()-before)
}

func TestFinderMaxTransfersZeroDisablesTransfers(t *testing.T) {
	finder := NewFinder(fianarantsoaFixture(), FinderOptions{}, nil)

	params := defaultParams("Adventiste Isada", "ENS Fianarantsoa")
	params.MaxTransfers = 0

	result, err := finder.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Routes)
}

func TestFinderMaxWalkingDistance(t *testing.T) {
	finder := NewFinder(fianarantsoaFixture(), FinderOptions{}, nil)

	params := defaultParams("Adventiste Isada", "ENS Fianarantsoa")
	params.MaxWalkingDistance = 1

	result, err := finder.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Routes, "the 9 m walk between the two Police Routiere rows exceeds 1 m")
}

func TestFinderDeduplicatesTransferTriples(t *testing.T) {
	repo := newFakeRepository()
	a := repo.addLine(1, "A", "", "", 500)
	b := repo.addLine(2, "B", "", "", 500)
	repo.addStop(1, "Start", -21.40, 47.00, a)
	repo.addStop(2, "Hub One", -21.41, 47.01, a)
	repo.addStop(3, "Hub Two", -21.42, 47.02, a)
	repo.addStop(10, "Hub One", -21.41, 47.01, b)
	repo.addStop(11, "Hub Two", -21.42, 47.02, b)
	repo.addStop(12, "Finish", -21.43, 47.03, b)

	finder := NewFinder(repo, FinderOptions{}, nil)
	result, err := finder.Search(context.Background(), defaultParams("Start", "Finish"))
	require.NoError(t, err)
	require.Len(t, result.Routes, 1, "(A, B, Finish) is emitted once even with two shared stops")
	assert.Equal(t, "Hub One", result.Routes[0].Stops()[1].Name)
}

func TestFinderTransferCombinationCap(t *testing.T) {
	repo := newFakeRepository()
	depart := repo.addLine(1, "Depart", "", "", 500)
	repo.addStop(1, "Origin", -21.40, 47.00, depart)
	repo.addStop(2, "Hub", -21.41, 47.01, depart)

	// ten feeder lines at Hub, only the last reaches the destination
	id := int64(100)
	for i := 0; i < 10; i++ {
		line := repo.addLine(int64(10+i), fmt.Sprintf("Feeder %d", i), "", "", 500)
		repo.addStop(id, "Hub", -21.41, 47.01, line)
		id++
		if i == 9 {
			repo.addStop(id, "Target", -21.50, 47.10, line)
			id++
		}
	}

	capped := NewFinder(repo, FinderOptions{MaxTransferCombinations: 3}, nil)
	result, err := capped.Search(context.Background(), defaultParams("Origin", "Target"))
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Empty(t, result.Routes)

	uncapped := NewFinder(repo, FinderOptions{}, nil)
	result, err = uncapped.Search(context.Background(), defaultParams("Origin", "Target"))
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Len(t, result.Routes, 1)
}

func TestFinderIgnoresStopsWithoutLine(t *testing.T) {
	repo := fianarantsoaFixture()
	repo.addStop(50, "Orphan Stop", -21.45, 47.09, nil)

	finder := NewFinder(repo, FinderOptions{}, nil)
	before := repo.calls.Load()
	result, err := finder.Search(context.Background(), defaultParams("Orphan", "Soatsihadino"))
	require.NoError(t, err)
	assert.Empty(t, result.Routes)
	assert.Len(t, result.DepartStops, 1)
	assert.Equal(t, int64(2), repo.calls.Load()-before, "no line or transfer lookups without lines")
}

func TestFinderDepartureNotFound(t *testing.T) {
	finder := NewFinder(fianarantsoaFixture(), FinderOptions{}, nil)

	_, err := finder.Search(context.Background(), defaultParams("Antananarivo", "Soatsihadino"))
	require.Error(t, err)

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, CodeDepartureNotFound, notFound.Code)
	assert.NotEmpty(t, notFound.Suggestions)
	assert.LessOrEqual(t, len(notFound.Suggestions), DefaultSuggestionCount)
}

func TestFinderDestinationNotFound(t *testing.T) {
	finder := NewFinder(fianarantsoaFixture(), FinderOptions{}, nil)

	_, err := finder.Search(context.Background(), defaultParams("Isada", "Police Andohanivory"))
	require.Error(t, err)
	assert.Equal(t, CodeDestinationNotFound, CodeOf(err))

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.NotEmpty(t, notFound.Suggestions)
	assert.Equal(t, "Police Routiere Andohanivory", notFound.Suggestions[0])
}

func TestFinderStorageErrors(t *testing.T) {
	boom := errors.New("database is locked")

	tests := []struct {
		name   string
		inject func(*fakeRepository)
		depart string
		dest   string
	}{
		{"name lookup", func(r *fakeRepository) { r.errFindByName = boom }, "Isada", "ENS"},
		{"line lookup", func(r *fakeRepository) { r.errFindByLine = boom }, "Isada", "ENS"},
		{"lines by stop name", func(r *fakeRepository) { r.errLinesByName = boom }, "Isada", "ENS"},
		{"suggestions", func(r *fakeRepository) { r.errListStopNames = boom }, "Nowhere", "ENS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := fianarantsoaFixture()
			tt.inject(repo)
			finder := NewFinder(repo, FinderOptions{}, nil)

			result, err := finder.Search(context.Background(), defaultParams(tt.depart, tt.dest))
			assert.Nil(t, result, "no partial result on storage failure")

			var storage *StorageError
			require.True(t, errors.As(err, &storage))
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, CodeStorageError, CodeOf(err))
		})
	}
}

func TestFinderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	finder := NewFinder(fianarantsoaFixture(), FinderOptions{}, nil)
	_, err := finder.Search(ctx, defaultParams("Adventiste Isada", "ENS Fianarantsoa"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, CodeCanceled, CodeOf(err))
}

func TestSuggestPrefersSharedWords(t *testing.T) {
	finder := NewFinder(fianarantsoaFixture(), FinderOptions{SuggestionCount: 2}, nil)

	suggestions, err := finder.Suggest(context.Background(), "Fianar ENS")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "ENS Fianarantsoa", suggestions[0])
}

func TestSuggestEmptyStore(t *testing.T) {
	finder := NewFinder(newFakeRepository(), FinderOptions{}, nil)

	suggestions, err := finder.Suggest(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
