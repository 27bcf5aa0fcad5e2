// Package seed loads a YAML description of areas, lines and stops into a
// store, so the service can run without a GTFS feed.
//
// A line lists its stops in riding order. Stops served by several lines can
// also be listed once under the top-level stops key with the names of the
// lines serving them; they are stored once per line.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"trajet.transit.mg/internal/trajet"
)

type File struct {
	Provinces []Province   `yaml:"provinces" validate:"dive"`
	Lines     []Line       `yaml:"lines" validate:"dive"`
	Stops     []SharedStop `yaml:"stops" validate:"dive"`
}

type Province struct {
	Name    string   `yaml:"name" validate:"required"`
	Regions []Region `yaml:"regions" validate:"dive"`
}

type Region struct {
	Name      string     `yaml:"name" validate:"required"`
	Districts []District `yaml:"districts" validate:"dive"`
}

type District struct {
	Name string `yaml:"name" validate:"required"`
}

type Line struct {
	ID        int64   `yaml:"id" validate:"gte=0"`
	Name      string  `yaml:"name" validate:"required"`
	Fare      float64 `yaml:"fare" validate:"gte=0"`
	Depart    string  `yaml:"depart"`
	Terminus  string  `yaml:"terminus"`
	Status    string  `yaml:"status" validate:"omitempty,oneof=Pending Accepted"`
	District  string  `yaml:"district"`
	CreatedBy string  `yaml:"createdBy"`
	Stops     []Stop  `yaml:"stops" validate:"dive"`
}

type Stop struct {
	Name      string   `yaml:"name" validate:"required"`
	Latitude  *float64 `yaml:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `yaml:"longitude" validate:"omitempty,longitude"`
	District  string   `yaml:"district"`
}

type SharedStop struct {
	Stop  `yaml:",inline"`
	Lines []string `yaml:"lines"`
}

// Writer is the part of a store a seed file is applied to.
type Writer interface {
	CreateProvince(ctx context.Context, p trajet.Province) (int64, error)
	CreateRegion(ctx context.Context, r trajet.Region) (int64, error)
	CreateDistrict(ctx context.Context, d trajet.District) (int64, error)
	CreateLine(ctx context.Context, line trajet.Line) (int64, error)
	CreateStopForLines(ctx context.Context, stop trajet.Stop, lineIDs []int64) ([]int64, error)
}

// Summary counts what Apply stored.
type Summary struct {
	Districts int
	Lines     int
	Stops     int
}

// Load reads and validates the seed file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a seed document, rejecting unknown keys, and validates it.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks field constraints and cross references between sections.
func (f *File) Validate() error {
	if err := validator.New().Struct(f); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	districts := make(map[string]bool)
	for _, p := range f.Provinces {
		for _, r := range p.Regions {
			for _, d := range r.Districts {
				if districts[d.Name] {
					return fmt.Errorf("invalid seed: duplicate district %q", d.Name)
				}
				districts[d.Name] = true
			}
		}
	}
	checkDistrict := func(name, owner string) error {
		if name != "" && !districts[name] {
			return fmt.Errorf("invalid seed: %s references unknown district %q", owner, name)
		}
		return nil
	}

	lines := make(map[string]bool)
	for _, l := range f.Lines {
		if lines[l.Name] {
			return fmt.Errorf("invalid seed: duplicate line %q", l.Name)
		}
		lines[l.Name] = true
		if err := checkDistrict(l.District, "line "+l.Name); err != nil {
			return err
		}
		for _, s := range l.Stops {
			if err := s.check(checkDistrict); err != nil {
				return err
			}
		}
	}
	for _, s := range f.Stops {
		if err := s.check(checkDistrict); err != nil {
			return err
		}
		for _, name := range s.Lines {
			if !lines[name] {
				return fmt.Errorf("invalid seed: stop %q references unknown line %q", s.Name, name)
			}
		}
	}
	return nil
}

func (s Stop) check(checkDistrict func(name, owner string) error) error {
	if (s.Latitude == nil) != (s.Longitude == nil) {
		return fmt.Errorf("invalid seed: stop %q needs both latitude and longitude", s.Name)
	}
	return checkDistrict(s.District, "stop "+s.Name)
}

// Apply stores f through w. Lines without a status are stored as Accepted.
func Apply(ctx context.Context, w Writer, f *File) (Summary, error) {
	var summary Summary

	districtIDs := make(map[string]int64)
	for _, p := range f.Provinces {
		provinceID, err := w.CreateProvince(ctx, trajet.Province{Name: p.Name})
		if err != nil {
			return summary, fmt.Errorf("province %q: %w", p.Name, err)
		}
		for _, r := range p.Regions {
			regionID, err := w.CreateRegion(ctx, trajet.Region{Name: r.Name, ProvinceID: provinceID})
			if err != nil {
				return summary, fmt.Errorf("region %q: %w", r.Name, err)
			}
			for _, d := range r.Districts {
				id, err := w.CreateDistrict(ctx, trajet.District{Name: d.Name, RegionID: regionID})
				if err != nil {
					return summary, fmt.Errorf("district %q: %w", d.Name, err)
				}
				districtIDs[d.Name] = id
				summary.Districts++
			}
		}
	}
	district := func(name string) *int64 {
		if id, ok := districtIDs[name]; ok {
			return &id
		}
		return nil
	}

	lineIDs := make(map[string]int64)
	for _, l := range f.Lines {
		status := trajet.LineStatus(l.Status)
		if status == "" {
			status = trajet.LineStatusAccepted
		}
		lineID, err := w.CreateLine(ctx, trajet.Line{
			ID:         l.ID,
			Name:       l.Name,
			Fare:       l.Fare,
			Depart:     l.Depart,
			Terminus:   l.Terminus,
			Status:     status,
			DistrictID: district(l.District),
			CreatedBy:  l.CreatedBy,
		})
		if err != nil {
			return summary, fmt.Errorf("line %q: %w", l.Name, err)
		}
		lineIDs[l.Name] = lineID
		summary.Lines++

		for _, s := range l.Stops {
			ids, err := w.CreateStopForLines(ctx, s.toStop(district), []int64{lineID})
			if err != nil {
				return summary, fmt.Errorf("line %q stop %q: %w", l.Name, s.Name, err)
			}
			summary.Stops += len(ids)
		}
	}

	for _, s := range f.Stops {
		ids := make([]int64, 0, len(s.Lines))
		for _, name := range s.Lines {
			ids = append(ids, lineIDs[name])
		}
		created, err := w.CreateStopForLines(ctx, s.toStop(district), ids)
		if err != nil {
			return summary, fmt.Errorf("stop %q: %w", s.Name, err)
		}
		summary.Stops += len(created)
	}
	return summary, nil
}

func (s Stop) toStop(district func(string) *int64) trajet.Stop {
	return trajet.Stop{
		Name:       s.Name,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		DistrictID: district(s.District),
	}
}
