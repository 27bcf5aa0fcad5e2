package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"trajet.transit.mg/internal/app"
	"trajet.transit.mg/internal/appconf"
	"trajet.transit.mg/internal/logging"
	"trajet.transit.mg/internal/memstore"
	"trajet.transit.mg/internal/models"
	"trajet.transit.mg/internal/seed"
	"trajet.transit.mg/internal/trajet"
)

func seededStore(t *testing.T) *memstore.Store {
	t.Helper()
	f, err := seed.Load("../seed/testdata/fianarantsoa.yaml")
	require.NoError(t, err)

	store := memstore.New()
	_, err = seed.Apply(context.Background(), store, f)
	require.NoError(t, err)
	return store
}

func testConfig() appconf.Config {
	cfg := appconf.Default()
	cfg.Env = appconf.Test
	cfg.ApiKeys = []string{"TEST"}
	cfg.RateLimit = -1
	return cfg
}

// createTestApi creates a RestAPI over the Fianarantsoa fixture.
func createTestApi(t *testing.T) *RestAPI {
	return createTestApiWith(t, testConfig(), seededStore(t))
}

func createTestApiWith(t *testing.T, cfg appconf.Config, store app.Store) *RestAPI {
	t.Helper()
	logger := logging.NewStructuredLogger(io.Discard, slog.LevelDebug)
	api := NewRestAPI(app.New(cfg, logger, store))
	t.Cleanup(api.Close)
	return api
}

func newTestServer(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	router := httprouter.New()
	api.SetRoutes(router)
	server := httptest.NewServer(api.Handler(router))
	t.Cleanup(server.Close)
	return server
}

// serveAndRetrieveEndpoint sets up a test server, makes a request to the specified endpoint, and returns the response
// and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	server := newTestServer(t, api)
	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	return resp, response
}

// dataAs re-decodes the generic data field of a response into out.
func dataAs(t *testing.T, response models.ResponseModel, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(response.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// brokenStore fails every read the search needs.
type brokenStore struct {
	*memstore.Store
	err error
}

func (s brokenStore) FindStopsByName(ctx context.Context, query string) ([]trajet.Stop, error) {
	return nil, s.err
}

func (s brokenStore) FindStopsNear(ctx context.Context, lat, lon, radius float64) ([]trajet.Stop, error) {
	return nil, s.err
}

func (s brokenStore) Ping(ctx context.Context) error {
	return s.err
}

var errDiskIO = errors.New("disk I/O error: /var/lib/trajet/trajet.db")
