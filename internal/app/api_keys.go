package app

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader carries the key for clients that keep it out of the URL.
const APIKeyHeader = "X-API-Key"

// RequestAPIKey returns the key of r, the ?key= parameter taking precedence
// over the header.
func RequestAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.URL.Query().Get("key")); key != "" {
		return key
	}
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(RequestAPIKey(r))
}

// IsInvalidAPIKey reports whether key is blank or not one of the configured keys.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}

	valid := 0
	for _, configured := range app.Config.ApiKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(configured))
	}
	return valid == 0
}
