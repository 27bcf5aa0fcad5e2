package trajet

import (
	"context"
	"sort"
	"sync/atomic"

	"trajet.transit.mg/internal/geo"
	"trajet.transit.mg/internal/textnorm"
)

// fakeRepository is an in-memory StopRepository with call counting and
// error injection.
type fakeRepository struct {
	lines map[int64]*Line
	stops []Stop

	calls atomic.Int64

	errFindByName    error
	errFindByLine    error
	errLinesByName   error
	errFindNear      error
	errListStopNames error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{lines: make(map[int64]*Line)}
}

func (f *fakeRepository) addLine(id int64, name, depart, terminus string, fare float64) *Line {
	line := &Line{ID: id, Name: name, Depart: depart, Terminus: terminus, Fare: fare, Status: LineStatusAccepted}
	f.lines[id] = line
	return line
}

func (f *fakeRepository) addStop(id int64, name string, lat, lon float64, line *Line) Stop {
	stop := Stop{ID: id, Name: name, Latitude: &lat, Longitude: &lon, Line: line}
	f.stops = append(f.stops, stop)
	return stop
}

func (f *fakeRepository) addStopWithoutCoordinates(id int64, name string, line *Line) Stop {
	stop := Stop{ID: id, Name: name, Line: line}
	f.stops = append(f.stops, stop)
	return stop
}

func (f *fakeRepository) FindStopsByName(ctx context.Context, query string) ([]Stop, error) {
	f.calls.Add(1)
	if f.errFindByName != nil {
		return nil, f.errFindByName
	}
	var out []Stop
	for _, stop := range f.stops {
		if textnorm.Matches(stop.Name, query) {
			out = append(out, stop)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindStopsByLineID(ctx context.Context, lineID int64) ([]Stop, error) {
	f.calls.Add(1)
	if f.errFindByLine != nil {
		return nil, f.errFindByLine
	}
	var out []Stop
	for _, stop := range f.stops {
		if stop.Line != nil && stop.Line.ID == lineID {
			out = append(out, stop)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepository) FindLinesByStopName(ctx context.Context, name string) ([]LineAtStop, error) {
	f.calls.Add(1)
	if f.errLinesByName != nil {
		return nil, f.errLinesByName
	}
	key := textnorm.Normalize(name)
	var out []LineAtStop
	for _, stop := range f.stops {
		if stop.Line != nil && textnorm.Normalize(stop.Name) == key {
			out = append(out, LineAtStop{Line: *stop.Line, Stop: stop})
		}
	}
	return out, nil
}

func (f *fakeRepository) FindStopsNear(ctx context.Context, lat, lon, radius float64) ([]Stop, error) {
	f.calls.Add(1)
	if f.errFindNear != nil {
		return nil, f.errFindNear
	}
	bounds := geo.BoundsForRadius(lat, lon, radius)
	var out []Stop
	for _, stop := range f.stops {
		if stop.HasCoordinates() && bounds.Contains(*stop.Latitude, *stop.Longitude) {
			out = append(out, stop)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListStopNames(ctx context.Context) ([]string, error) {
	f.calls.Add(1)
	if f.errListStopNames != nil {
		return nil, f.errListStopNames
	}
	seen := make(map[string]bool)
	var out []string
	for _, stop := range f.stops {
		if !seen[stop.Name] {
			seen[stop.Name] = true
			out = append(out, stop.Name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// fianarantsoaFixture builds Bus 39 and Bus 40 sharing Police Routiere Andohanivory.
func fianarantsoaFixture() *fakeRepository {
	repo := newFakeRepository()
	bus39 := repo.addLine(39, "Bus 39", "Isada", "Andohanivory", 600)
	bus40 := repo.addLine(40, "Bus 40", "Andohanivory", "Ampitatafika", 600)

	repo.addStop(1, "Adventiste Isada", -21.463723, 47.091866, bus39)
	repo.addStop(2, "Soatsihadino", -21.454287, 47.096572, bus39)
	repo.addStop(3, "Police Routiere Andohanivory", -21.447310, 47.101020, bus39)

	repo.addStop(10, "Police Routiere Andohanivory", -21.447350, 47.101100, bus40)
	repo.addStop(11, "ENS Fianarantsoa", -21.440900, 47.108200, bus40)
	return repo
}
