package restapi

import (
	"net/http"

	"trajet.transit.mg/internal/models"
	"trajet.transit.mg/internal/utils"
)

func (api *RestAPI) lineStopsHandler(w http.ResponseWriter, r *http.Request) {
	lineID, err := utils.LineIDFromPath(r, "id")
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"id": {err.Error()},
		})
		return
	}

	line, stops, err := api.Trajet.LineStops(r.Context(), lineID)
	if err != nil {
		api.trajetErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewOKResponse(models.LineStops{
		Line:  models.NewLine(line),
		Stops: models.NewStops(stops),
	}))
}
