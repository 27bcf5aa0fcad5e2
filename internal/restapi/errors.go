package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"trajet.transit.mg/internal/logging"
	"trajet.transit.mg/internal/models"
	"trajet.transit.mg/internal/report"
	"trajet.transit.mg/internal/trajet"
)

// invalidAPIKeyResponse sends a 401 Unauthorized response with the required format
// for invalid API key errors
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Code        int    `json:"code"`
		CurrentTime int64  `json:"currentTime"`
		Text        string `json:"text"`
		Version     int    `json:"version"`
	}{
		Code:        http.StatusUnauthorized,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "permission denied",
		Version:     1, // clients of the first API version match on this body
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode invalid API key response", err)
	}
}

// serverErrorResponse sends a 500 that never carries err to the client.
func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		report.ReportErrorWithOptions(err, report.Options{
			Tags: map[string]string{
				"path":       r.URL.Path,
				"error_code": string(trajet.CodeStorageError),
			},
		})
	}
	logging.LogError(logger, "request failed", err,
		slog.String("path", r.URL.Path),
		slog.String("component", "http_server"))

	api.sendResponse(w, r, models.NewErrorResponse(
		http.StatusInternalServerError,
		string(trajet.CodeStorageError),
		"internal server error",
		nil,
		nil,
	))
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := models.NewErrorResponse(
		http.StatusBadRequest,
		string(trajet.CodeInvalidParameter),
		"invalid parameters",
		nil,
		nil,
	)
	response.FieldErrors = fieldErrors
	api.sendResponse(w, r, response)
}

// trajetErrorResponse maps an error returned by the search service to its
// HTTP status and envelope.
func (api *RestAPI) trajetErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *trajet.ValidationError
	var notFoundErr *trajet.NotFoundError
	var coordErr *trajet.InvalidCoordinateError

	switch {
	case errors.As(err, &validationErr):
		response := models.NewErrorResponse(http.StatusBadRequest, string(validationErr.Code), validationErr.Message, nil, nil)
		if len(validationErr.Fields) > 0 {
			response.FieldErrors = make(map[string][]string, len(validationErr.Fields))
			for _, field := range validationErr.Fields {
				response.FieldErrors[field] = []string{validationErr.Message}
			}
		}
		api.sendResponse(w, r, response)

	case errors.As(err, &notFoundErr):
		var data interface{}
		if notFoundErr.Depart != nil && notFoundErr.Destination != nil {
			data = models.NoRouteData{
				Depart:      models.NewEndpoint(*notFoundErr.Depart),
				Destination: models.NewEndpoint(*notFoundErr.Destination),
				Hint:        notFoundErr.Hint,
			}
		}
		api.sendResponse(w, r, models.NewErrorResponse(
			http.StatusNotFound,
			string(notFoundErr.Code),
			notFoundErr.Message,
			notFoundErr.Suggestions,
			data,
		))

	case errors.As(err, &coordErr):
		api.sendResponse(w, r, models.NewErrorResponse(
			http.StatusBadRequest,
			string(trajet.CodeInvalidCoordinates),
			coordErr.Message,
			nil,
			nil,
		))

	default:
		api.serverErrorResponse(w, r, err)
	}
}
