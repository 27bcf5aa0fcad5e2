package utils

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// PathParam returns the named route parameter with any ".json" suffix and
// surrounding whitespace removed.
func PathParam(r *http.Request, name string) string {
	raw := httprouter.ParamsFromContext(r.Context()).ByName(name)
	return strings.TrimSpace(strings.TrimSuffix(raw, ".json"))
}

// LineIDFromPath parses the numeric line id held by the named route parameter.
func LineIDFromPath(r *http.Request, name string) (int64, error) {
	return ParseLineID(PathParam(r, name))
}
