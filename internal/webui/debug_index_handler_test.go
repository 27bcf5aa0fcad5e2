package webui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trajet.transit.mg/internal/app"
	"trajet.transit.mg/internal/appconf"
	"trajet.transit.mg/internal/memstore"
	"trajet.transit.mg/internal/seed"
)

func newTestWebUI(t *testing.T) *WebUI {
	t.Helper()
	f, err := seed.Load("../seed/testdata/fianarantsoa.yaml")
	require.NoError(t, err)
	store := memstore.New()
	_, err = seed.Apply(context.Background(), store, f)
	require.NoError(t, err)

	cfg := appconf.Default()
	cfg.ApiKeys = []string{"secret-key"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &WebUI{Application: app.New(cfg, logger, store)}
}

func getDebug(t *testing.T, webUI *WebUI, query string) (int, string) {
	t.Helper()
	router := httprouter.New()
	webUI.SetWebUIRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/"+query, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestDebugIndexHandler(t *testing.T) {
	webUI := newTestWebUI(t)

	tests := []struct {
		query    string
		title    string
		contains string
	}{
		{"?dataType=lines", "Lines (all statuses)", "Bus 70"},
		{"?dataType=stops", "Visible stop names", "Police Routiere Andohanivory"},
		{"?dataType=counts", "Table counts", "stops"},
		{"", "Choose a data type", "Please use one of the following"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			status, body := getDebug(t, webUI, tt.query)
			assert.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, "<title>"+tt.title+"</title>")
			assert.Contains(t, body, tt.contains)
		})
	}
}

func TestDebugConfigHidesSecrets(t *testing.T) {
	webUI := newTestWebUI(t)

	status, body := getDebug(t, webUI, "?dataType=config")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "DBPath")
	assert.NotContains(t, body, "secret-key")
}
