package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Search responses with a handful of routes stay under this size.
const compressionMinSize = 1024

// compressedTypes are the bodies this API produces: JSON envelopes and the debug page.
var compressedTypes = []string{"application/json", "text/html"}

// NewCompressionMiddleware gzips JSON and HTML responses of at least minSize
// bytes for clients that accept it.
func NewCompressionMiddleware(minSize, level int) (func(http.Handler) http.Handler, error) {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(minSize),
		gzhttp.CompressionLevel(level),
		gzhttp.ContentTypes(compressedTypes),
	)
	if err != nil {
		return nil, err
	}
	return func(next http.Handler) http.Handler { return wrapper(next) }, nil
}

// CompressionMiddleware applies NewCompressionMiddleware with the default
// settings, falling back to gzhttp's own defaults.
func CompressionMiddleware(next http.Handler) http.Handler {
	mw, err := NewCompressionMiddleware(compressionMinSize, 6)
	if err != nil {
		return gzhttp.GzipHandler(next)
	}
	return mw(next)
}
