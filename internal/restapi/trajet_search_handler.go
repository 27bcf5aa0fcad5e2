package restapi

import (
	"net/http"
	"time"

	"trajet.transit.mg/internal/metrics"
	"trajet.transit.mg/internal/models"
	"trajet.transit.mg/internal/trajet"
	"trajet.transit.mg/internal/utils"
)

func (api *RestAPI) trajetSearchHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	maxTransfers, fieldErrors := utils.ParseOptionalInt(queryParams, "maxTransfers", nil)
	maxWalkingDistance, fieldErrors := utils.ParseOptionalFloat(queryParams, "maxWalkingDistance", fieldErrors)
	limit, fieldErrors := utils.ParseOptionalInt(queryParams, "limit", fieldErrors)

	depart, err := utils.ValidateAndSanitizeQuery(queryParams.Get("depart"))
	if err != nil {
		fieldErrors["depart"] = append(fieldErrors["depart"], err.Error())
	}
	destination, err := utils.ValidateAndSanitizeQuery(queryParams.Get("destination"))
	if err != nil {
		fieldErrors["destination"] = append(fieldErrors["destination"], err.Error())
	}

	if len(fieldErrors) > 0 {
		metrics.ObserveSearch(string(trajet.CodeInvalidParameter), 0, 0, false)
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ctx := r.Context()
	if ctx.Err() != nil {
		api.serverErrorResponse(w, r, ctx.Err())
		return
	}

	start := time.Now()
	result, err := api.Trajet.Search(ctx, trajet.Query{
		Depart:             depart,
		Destination:        destination,
		MaxTransfers:       maxTransfers,
		MaxWalkingDistance: maxWalkingDistance,
		Limit:              limit,
	})
	if err != nil {
		metrics.ObserveSearch(string(trajet.CodeOf(err)), time.Since(start), 0, false)
		api.trajetErrorResponse(w, r, err)
		return
	}
	metrics.ObserveSearch(metrics.OutcomeOK, time.Since(start), result.TotalFound, result.Truncated)

	api.sendResponse(w, r, models.NewOKResponse(models.NewSearchData(result)))
}
