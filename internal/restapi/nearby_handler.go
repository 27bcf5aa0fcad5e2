package restapi

import (
	"net/http"

	"trajet.transit.mg/internal/metrics"
	"trajet.transit.mg/internal/models"
	"trajet.transit.mg/internal/trajet"
	"trajet.transit.mg/internal/utils"
)

func (api *RestAPI) nearbyHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	// A malformed coordinate is reported like a missing one.
	lat, _ := utils.ParseOptionalFloat(queryParams, "latitude", nil)
	lon, _ := utils.ParseOptionalFloat(queryParams, "longitude", nil)

	radius, fieldErrors := utils.ParseFloatParam(queryParams, "radius", nil)
	if err := utils.ValidateRadius(radius); err != nil {
		fieldErrors["radius"] = append(fieldErrors["radius"], err.Error())
	}
	if len(fieldErrors) > 0 {
		metrics.ObserveNearby(string(trajet.CodeInvalidParameter))
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ctx := r.Context()
	if ctx.Err() != nil {
		api.serverErrorResponse(w, r, ctx.Err())
		return
	}

	stops, err := api.Trajet.Nearby(ctx, lat, lon, radius)
	if err != nil {
		metrics.ObserveNearby(string(trajet.CodeOf(err)))
		api.trajetErrorResponse(w, r, err)
		return
	}
	metrics.ObserveNearby(metrics.OutcomeOK)

	if radius <= 0 {
		radius = trajet.DefaultNearbyRadius
	}
	api.sendResponse(w, r, models.NewOKResponse(models.NewNearbyData(stops, radius)))
}
