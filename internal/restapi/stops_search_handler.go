package restapi

import (
	"net/http"

	"trajet.transit.mg/internal/models"
	"trajet.transit.mg/internal/utils"
)

func (api *RestAPI) stopsSearchHandler(w http.ResponseWriter, r *http.Request) {
	query, err := utils.ValidateAndSanitizeQuery(r.URL.Query().Get("query"))
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"query": {err.Error()},
		})
		return
	}

	stops, err := api.Trajet.FindStops(r.Context(), query)
	if err != nil {
		api.trajetErrorResponse(w, r, err)
		return
	}

	list := models.StopList{Stops: models.NewStops(stops)}
	list.Count = len(list.Stops)
	api.sendResponse(w, r, models.NewOKResponse(list))
}
