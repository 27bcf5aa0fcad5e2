package restapi

import (
	"net/http"

	"trajet.transit.mg/internal/logging"
	"trajet.transit.mg/internal/metrics"
	"trajet.transit.mg/internal/models"
)

type healthData struct {
	Status string         `json:"status"`
	Env    string         `json:"env"`
	Counts map[string]int `json:"counts,omitempty"`
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := healthData{Status: "ok", Env: api.Config.Env.String()}

	counts, err := api.Store.TableCounts(ctx)
	if err == nil {
		err = api.Store.Ping(ctx)
	}
	if err != nil {
		logging.LogError(logging.FromContext(ctx), "health check failed", err)
		data.Status = "unavailable"
		api.sendResponse(w, r, models.NewResponse(http.StatusServiceUnavailable, data, "store unavailable"))
		return
	}

	metrics.SetStoreRows(counts)
	data.Counts = counts
	api.sendResponse(w, r, models.NewOKResponse(data))
}
