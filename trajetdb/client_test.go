package trajetdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trajet.transit.mg/internal/appconf"
	"trajet.transit.mg/internal/trajet"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(NewConfig(MemoryPath, appconf.Test, false), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func ptr(v float64) *float64 { return &v }

// seedFianarantsoa stores Bus 39 and Bus 40, which share Police Routiere
// Andohanivory, plus a pending line and an orphan stop.
func seedFianarantsoa(t *testing.T, c *Client) {
	t.Helper()
	ctx := context.Background()

	provinceID, err := c.CreateProvince(ctx, trajet.Province{Name: "Fianarantsoa"})
	require.NoError(t, err)
	regionID, err := c.CreateRegion(ctx, trajet.Region{Name: "Haute Matsiatra", ProvinceID: provinceID})
	require.NoError(t, err)
	districtID, err := c.CreateDistrict(ctx, trajet.District{Name: "Fianarantsoa I", RegionID: regionID})
	require.NoError(t, err)

	bus39, err := c.CreateLine(ctx, trajet.Line{ID: 39, Name: "Bus 39", Fare: 600, Depart: "Isada",
		Terminus: "Andohanivory", Status: trajet.LineStatusAccepted, DistrictID: &districtID})
	require.NoError(t, err)
	bus40, err := c.CreateLine(ctx, trajet.Line{ID: 40, Name: "Bus 40", Fare: 600, Depart: "Andohanivory",
		Terminus: "Ampitatafika", Status: trajet.LineStatusAccepted})
	require.NoError(t, err)
	pending, err := c.CreateLine(ctx, trajet.Line{ID: 50, Name: "Bus 50", Fare: 500})
	require.NoError(t, err)

	stops := []struct {
		name     string
		lat, lon float64
		lines    []int64
	}{
		{"Adventiste Isada", -21.463723, 47.091866, []int64{bus39}},
		{"Soatsihadino", -21.454287, 47.096572, []int64{bus39}},
		{"Police Routiere Andohanivory", -21.447310, 47.101020, []int64{bus39, bus40}},
		{"ENS Fianarantsoa", -21.440900, 47.108200, []int64{bus40}},
		{"Ampitatafika", -21.430000, 47.110000, []int64{pending}},
	}
	for _, s := range stops {
		_, err := c.CreateStopForLines(ctx, trajet.Stop{Name: s.name, Latitude: ptr(s.lat), Longitude: ptr(s.lon)}, s.lines)
		require.NoError(t, err)
	}

	_, err = c.CreateStopForLines(ctx, trajet.Stop{Name: "Gare Routière Isada"}, nil)
	require.NoError(t, err)
}

func TestNewClientRefusesFileInTestEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajet.db")
	_, err := NewClient(NewConfig(path, appconf.Test, false), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test environment")
}

func TestNewClientFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajet.db")
	client, err := NewClient(NewConfig(path, appconf.Development, false), nil)
	require.NoError(t, err)
	defer client.Close() // nolint:errcheck

	require.NoError(t, client.Ping(context.Background()))

	// the schema is idempotent
	reopened, err := NewClient(NewConfig(path, appconf.Development, false), nil)
	require.NoError(t, err)
	require.NoError(t, reopened.Close())
}

func TestDSN(t *testing.T) {
	assert.Equal(t, MemoryPath, dsn(MemoryPath))
	assert.Equal(t, "file:trajet.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn("trajet.db"))
	assert.Equal(t, "file:trajet.db?mode=ro&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn("file:trajet.db?mode=ro"))
}

func TestTableCounts(t *testing.T) {
	client := newTestClient(t)
	seedFianarantsoa(t, client)

	counts, err := client.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"provinces": 1,
		"regions":   1,
		"districts": 1,
		"lines":     3,
		"stops":     7,
	}, counts)
}

func TestForeignKeysEnforced(t *testing.T) {
	client := newTestClient(t)

	_, err := client.CreateStop(context.Background(), trajet.Stop{
		Name: "Nowhere",
		Line: &trajet.Line{ID: 999},
	})
	assert.Error(t, err)
}
