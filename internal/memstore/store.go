// Package memstore is an in-memory store for lines and stops. It backs the
// service when it runs from a seed file without a database.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/rtree"

	"trajet.transit.mg/internal/geo"
	"trajet.transit.mg/internal/textnorm"
	"trajet.transit.mg/internal/trajet"
)

type stopRow struct {
	stop   trajet.Stop // Line is left nil; it is attached on read
	lineID *int64
	key    string
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	nextID    int64
	provinces map[int64]trajet.Province
	regions   map[int64]trajet.Region
	districts map[int64]trajet.District
	lines     map[int64]trajet.Line
	stops     []stopRow // sorted by stop id
	tree      rtree.RTree
}

var _ trajet.StopRepository = (*Store)(nil)

func New() *Store {
	return &Store{
		provinces: make(map[int64]trajet.Province),
		regions:   make(map[int64]trajet.Region),
		districts: make(map[int64]trajet.District),
		lines:     make(map[int64]trajet.Line),
	}
}

// Close is a no-op so Store can stand in for the database client.
func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// allocate returns id when it is free, or the next free id when id is zero.
// Callers hold the write lock.
func (s *Store) allocate(id int64, taken func(int64) bool) (int64, error) {
	if id == 0 {
		for {
			s.nextID++
			if !taken(s.nextID) {
				return s.nextID, nil
			}
		}
	}
	if taken(id) {
		return 0, fmt.Errorf("id %d already exists", id)
	}
	if id > s.nextID {
		s.nextID = id
	}
	return id, nil
}

func (s *Store) CreateProvince(ctx context.Context, p trajet.Province) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.allocate(p.ID, func(id int64) bool { _, ok := s.provinces[id]; return ok })
	if err != nil {
		return 0, fmt.Errorf("create_province: %w", err)
	}
	p.ID = id
	s.provinces[id] = p
	return id, nil
}

func (s *Store) CreateRegion(ctx context.Context, r trajet.Region) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.provinces[r.ProvinceID]; !ok {
		return 0, fmt.Errorf("create_region: unknown province %d", r.ProvinceID)
	}
	id, err := s.allocate(r.ID, func(id int64) bool { _, ok := s.regions[id]; return ok })
	if err != nil {
		return 0, fmt.Errorf("create_region: %w", err)
	}
	r.ID = id
	s.regions[id] = r
	return id, nil
}

func (s *Store) CreateDistrict(ctx context.Context, d trajet.District) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions[d.RegionID]; !ok {
		return 0, fmt.Errorf("create_district: unknown region %d", d.RegionID)
	}
	id, err := s.allocate(d.ID, func(id int64) bool { _, ok := s.districts[id]; return ok })
	if err != nil {
		return 0, fmt.Errorf("create_district: %w", err)
	}
	d.ID = id
	s.districts[id] = d
	return id, nil
}

// CreateLine stores line. An empty status is stored as Pending.
func (s *Store) CreateLine(ctx context.Context, line trajet.Line) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDistrict(line.DistrictID); err != nil {
		return 0, fmt.Errorf("create_line: %w", err)
	}
	if line.Status == "" {
		line.Status = trajet.LineStatusPending
	}
	if !validStatus(line.Status) {
		return 0, fmt.Errorf("create_line: invalid status %q", line.Status)
	}
	id, err := s.allocate(line.ID, func(id int64) bool { _, ok := s.lines[id]; return ok })
	if err != nil {
		return 0, fmt.Errorf("create_line: %w", err)
	}
	line.ID = id
	s.lines[id] = line
	return id, nil
}

func (s *Store) SetLineStatus(ctx context.Context, lineID int64, status trajet.LineStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validStatus(status) {
		return fmt.Errorf("set_line_status: invalid status %q", status)
	}
	line, ok := s.lines[lineID]
	if !ok {
		return fmt.Errorf("set_line_status: unknown line %d", lineID)
	}
	line.Status = status
	s.lines[lineID] = line
	return nil
}

// CreateStopForLines stores stop once per line, or once without a line when
// lineIDs is empty. Nothing is stored if any line is unknown.
func (s *Store) CreateStopForLines(ctx context.Context, stop trajet.Stop, lineIDs []int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDistrict(stop.DistrictID); err != nil {
		return nil, fmt.Errorf("create_stop_for_lines: %w", err)
	}
	for _, lineID := range lineIDs {
		if _, ok := s.lines[lineID]; !ok {
			return nil, fmt.Errorf("create_stop_for_lines: unknown line %d", lineID)
		}
	}

	if len(lineIDs) == 0 {
		id, err := s.insertStop(stop, nil)
		if err != nil {
			return nil, fmt.Errorf("create_stop_for_lines: %w", err)
		}
		return []int64{id}, nil
	}

	ids := make([]int64, 0, len(lineIDs))
	for _, lineID := range lineIDs {
		row := stop
		row.ID = 0
		id, err := s.insertStop(row, &lineID)
		if err != nil {
			return nil, fmt.Errorf("create_stop_for_lines: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateStop stores one stop row, attached to stop.Line when set.
func (s *Store) CreateStop(ctx context.Context, stop trajet.Stop) (int64, error) {
	var lineIDs []int64
	if id, ok := stop.LineID(); ok {
		lineIDs = []int64{id}
	}
	ids, err := s.CreateStopForLines(ctx, stop, lineIDs)
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func (s *Store) insertStop(stop trajet.Stop, lineID *int64) (int64, error) {
	id, err := s.allocate(stop.ID, func(id int64) bool { return s.indexOfStop(id) >= 0 })
	if err != nil {
		return 0, err
	}
	stop.ID = id
	stop.Line = nil
	stop.Latitude = clone(stop.Latitude)
	stop.Longitude = clone(stop.Longitude)
	stop.DistrictID = clone(stop.DistrictID)

	row := stopRow{stop: stop, lineID: lineID, key: textnorm.Normalize(stop.Name)}
	at := sort.Search(len(s.stops), func(i int) bool { return s.stops[i].stop.ID >= id })
	s.stops = append(s.stops, stopRow{})
	copy(s.stops[at+1:], s.stops[at:])
	s.stops[at] = row

	if stop.HasCoordinates() {
		point := [2]float64{*stop.Latitude, *stop.Longitude}
		s.tree.Insert(point, point, id)
	}
	return id, nil
}

func (s *Store) indexOfStop(id int64) int {
	at := sort.Search(len(s.stops), func(i int) bool { return s.stops[i].stop.ID >= id })
	if at < len(s.stops) && s.stops[at].stop.ID == id {
		return at
	}
	return -1
}

func (s *Store) checkDistrict(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := s.districts[*id]; !ok {
		return fmt.Errorf("unknown district %d", *id)
	}
	return nil
}

func validStatus(status trajet.LineStatus) bool {
	return status == trajet.LineStatusPending || status == trajet.LineStatusAccepted
}

// materialize attaches the current line to row. Callers hold the read lock.
func (s *Store) materialize(row stopRow) trajet.Stop {
	stop := row.stop
	if row.lineID != nil {
		line := s.lines[*row.lineID]
		stop.Line = &line
	}
	return stop
}

// visible reports whether riders may see row: it has no line or an accepted one.
func (s *Store) visible(row stopRow) bool {
	if row.lineID == nil {
		return true
	}
	return s.lines[*row.lineID].Status == trajet.LineStatusAccepted
}

func (s *Store) FindStopsByName(ctx context.Context, query string) ([]trajet.Stop, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := textnorm.Normalize(query)
	if key == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []trajet.Stop
	for _, row := range s.stops {
		if s.visible(row) && strings.Contains(row.key, key) {
			out = append(out, s.materialize(row))
		}
	}
	return out, nil
}

func (s *Store) FindStopsByLineID(ctx context.Context, lineID int64) ([]trajet.Stop, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lines[lineID].Status != trajet.LineStatusAccepted {
		return nil, nil
	}
	var out []trajet.Stop
	for _, row := range s.stops {
		if row.lineID != nil && *row.lineID == lineID {
			out = append(out, s.materialize(row))
		}
	}
	return out, nil
}

func (s *Store) FindLinesByStopName(ctx context.Context, name string) ([]trajet.LineAtStop, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := textnorm.Normalize(name)
	if key == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []trajet.LineAtStop
	for _, row := range s.stops {
		if row.lineID == nil || row.key != key || !s.visible(row) {
			continue
		}
		stop := s.materialize(row)
		out = append(out, trajet.LineAtStop{Line: *stop.Line, Stop: stop})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line.ID < out[j].Line.ID })
	return out, nil
}

func (s *Store) FindStopsNear(ctx context.Context, lat, lon, radius float64) ([]trajet.Stop, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := geo.BoundsForRadius(lat, lon, radius)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	s.tree.Search(
		[2]float64{b.MinLat, b.MinLon},
		[2]float64{b.MaxLat, b.MaxLon},
		func(min, max [2]float64, data interface{}) bool {
			if id, ok := data.(int64); ok {
				ids = append(ids, id)
			}
			return true
		},
	)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]trajet.Stop, 0, len(ids))
	for _, id := range ids {
		row := s.stops[s.indexOfStop(id)]
		if s.visible(row) {
			out = append(out, s.materialize(row))
		}
	}
	return out, nil
}

func (s *Store) ListStopNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, row := range s.stops {
		if s.visible(row) && !seen[row.stop.Name] {
			seen[row.stop.Name] = true
			names = append(names, row.stop.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListLines returns every line regardless of status, ordered by id.
func (s *Store) ListLines(ctx context.Context) ([]trajet.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]trajet.Line, 0, len(s.lines))
	for _, line := range s.lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (s *Store) TableCounts(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"provinces": len(s.provinces),
		"regions":   len(s.regions),
		"districts": len(s.districts),
		"lines":     len(s.lines),
		"stops":     len(s.stops),
	}, nil
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
