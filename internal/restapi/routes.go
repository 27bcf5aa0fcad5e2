package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

// withAPIKey checks the key before rate limiting so unknown keys cannot fill the limiter table.
func (api *RestAPI) withAPIKey(finalHandler handlerFunc) http.Handler {
	var next http.Handler = http.HandlerFunc(finalHandler)
	if api.rateLimiter != nil {
		next = api.rateLimiter.Handler(next)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/trajet/search", api.withAPIKey(api.trajetSearchHandler))
	router.Handler(http.MethodGet, "/api/trajet/nearby", api.withAPIKey(api.nearbyHandler))
	router.Handler(http.MethodGet, "/api/stops/search", api.withAPIKey(api.stopsSearchHandler))
	router.Handler(http.MethodGet, "/api/lines/:id/stops", api.withAPIKey(api.lineStopsHandler))

	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

// Handler wraps router with the middleware every request goes through.
func (api *RestAPI) Handler(router *httprouter.Router) http.Handler {
	var handler http.Handler = router
	handler = CompressionMiddleware(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	handler = api.WithSecurityHeaders(handler)
	return handler
}
