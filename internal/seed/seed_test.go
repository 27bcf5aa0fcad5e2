package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trajet.transit.mg/internal/trajet"
)

type storedStop struct {
	stop    trajet.Stop
	lineIDs []int64
}

// recordingWriter keeps everything it is asked to store.
type recordingWriter struct {
	nextID    int64
	districts []trajet.District
	lines     []trajet.Line
	stops     []storedStop

	failOnLine string
}

func (w *recordingWriter) id() int64 {
	w.nextID++
	return w.nextID
}

func (w *recordingWriter) CreateProvince(ctx context.Context, p trajet.Province) (int64, error) {
	return w.id(), nil
}

func (w *recordingWriter) CreateRegion(ctx context.Context, r trajet.Region) (int64, error) {
	return w.id(), nil
}

func (w *recordingWriter) CreateDistrict(ctx context.Context, d trajet.District) (int64, error) {
	d.ID = w.id()
	w.districts = append(w.districts, d)
	return d.ID, nil
}

func (w *recordingWriter) CreateLine(ctx context.Context, line trajet.Line) (int64, error) {
	if line.Name == w.failOnLine {
		return 0, errors.New("disk full")
	}
	if line.ID == 0 {
		line.ID = w.id()
	}
	w.lines = append(w.lines, line)
	return line.ID, nil
}

func (w *recordingWriter) CreateStopForLines(ctx context.Context, stop trajet.Stop, lineIDs []int64) ([]int64, error) {
	w.stops = append(w.stops, storedStop{stop: stop, lineIDs: lineIDs})
	n := len(lineIDs)
	if n == 0 {
		n = 1
	}
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = w.id()
	}
	return ids, nil
}

func TestLoadFixture(t *testing.T) {
	f, err := Load("testdata/fianarantsoa.yaml")
	require.NoError(t, err)

	require.Len(t, f.Provinces, 1)
	assert.Equal(t, "Fianarantsoa I", f.Provinces[0].Regions[0].Districts[0].Name)
	require.Len(t, f.Lines, 4)
	assert.Equal(t, int64(39), f.Lines[0].ID)
	assert.Equal(t, 600.0, f.Lines[0].Fare)
	require.Len(t, f.Stops, 3)
	assert.Equal(t, []string{"Bus 39", "Bus 40"}, f.Stops[0].Lines)
	assert.Nil(t, f.Stops[2].Latitude)
}

func TestApply(t *testing.T) {
	f, err := Load("testdata/fianarantsoa.yaml")
	require.NoError(t, err)

	w := &recordingWriter{nextID: 1000}
	summary, err := Apply(context.Background(), w, f)
	require.NoError(t, err)

	assert.Equal(t, Summary{Districts: 1, Lines: 4, Stops: 10}, summary)

	require.Len(t, w.lines, 4)
	assert.Equal(t, trajet.LineStatusAccepted, w.lines[0].Status, "status defaults to Accepted")
	require.NotNil(t, w.lines[0].DistrictID)
	assert.Equal(t, w.districts[0].ID, *w.lines[0].DistrictID)
	assert.Nil(t, w.lines[2].DistrictID)
	assert.Equal(t, trajet.LineStatusPending, w.lines[3].Status)
	assert.Equal(t, "contributor@example.mg", w.lines[3].CreatedBy)

	police := w.stops[len(w.stops)-3]
	assert.Equal(t, "Police Routiere Andohanivory", police.stop.Name)
	assert.Equal(t, []int64{39, 40}, police.lineIDs)

	orphan := w.stops[len(w.stops)-1]
	assert.Equal(t, "Marché Zoma", orphan.stop.Name)
	assert.Empty(t, orphan.lineIDs)
}

func TestApplyStopsOnWriterError(t *testing.T) {
	f, err := Load("testdata/fianarantsoa.yaml")
	require.NoError(t, err)

	w := &recordingWriter{failOnLine: "Bus 40"}
	summary, err := Apply(context.Background(), w, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `line "Bus 40"`)
	assert.Equal(t, 1, summary.Lines)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown key",
			doc:  "lines:\n  - name: Bus 1\n    colour: red\n",
			want: "colour",
		},
		{
			name: "missing line name",
			doc:  "lines:\n  - fare: 100\n",
			want: "Name",
		},
		{
			name: "negative fare",
			doc:  "lines:\n  - name: Bus 1\n    fare: -5\n",
			want: "Fare",
		},
		{
			name: "bad status",
			doc:  "lines:\n  - name: Bus 1\n    status: Rejected\n",
			want: "Status",
		},
		{
			name: "latitude out of range",
			doc:  "lines:\n  - name: Bus 1\n    stops:\n      - name: A\n        latitude: 123\n        longitude: 47\n",
			want: "Latitude",
		},
		{
			name: "half coordinates",
			doc:  "lines:\n  - name: Bus 1\n    stops:\n      - name: A\n        latitude: -21\n",
			want: "both latitude and longitude",
		},
		{
			name: "unknown line reference",
			doc:  "lines:\n  - name: Bus 1\nstops:\n  - name: A\n    lines: [Bus 2]\n",
			want: `unknown line "Bus 2"`,
		},
		{
			name: "unknown district",
			doc:  "lines:\n  - name: Bus 1\n    district: Nowhere\n",
			want: `unknown district "Nowhere"`,
		},
		{
			name: "duplicate line",
			doc:  "lines:\n  - name: Bus 1\n  - name: Bus 1\n",
			want: "duplicate line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Lines)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
}
