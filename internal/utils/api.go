package utils

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParseFloatParam retrieves a float64 value from the provided URL query parameters.
// If the key is not present or the value is invalid, it returns 0 and updates the fieldErrors map.
func ParseFloatParam(params url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := strings.TrimSpace(params.Get(key))
	if val == "" {
		return 0, fieldErrors
	}

	f, ok := parseFinite(val)
	if !ok {
		fieldErrors[key] = append(fieldErrors[key], invalidField(key))
		return 0, fieldErrors
	}
	return f, fieldErrors
}

// ParseOptionalFloat is ParseFloatParam for parameters that distinguish
// "absent" from zero. It returns nil when the key is absent or invalid.
func ParseOptionalFloat(params url.Values, key string, fieldErrors map[string][]string) (*float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := strings.TrimSpace(params.Get(key))
	if val == "" {
		return nil, fieldErrors
	}

	f, ok := parseFinite(val)
	if !ok {
		fieldErrors[key] = append(fieldErrors[key], invalidField(key))
		return nil, fieldErrors
	}
	return &f, fieldErrors
}

// parseFinite rejects the NaN and Inf spellings strconv accepts; they cannot
// be encoded back into a JSON response.
func parseFinite(val string) (float64, bool) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseOptionalInt returns nil when key is absent.
func ParseOptionalInt(params url.Values, key string, fieldErrors map[string][]string) (*int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := strings.TrimSpace(params.Get(key))
	if val == "" {
		return nil, fieldErrors
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], invalidField(key))
		return nil, fieldErrors
	}
	return &n, fieldErrors
}

// ParseLineID parses a numeric line id taken from a path segment.
func ParseLineID(raw string) (int64, error) {
	if err := ValidateID(raw); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid line id %q", raw)
	}
	return id, nil
}

func invalidField(key string) string {
	return fmt.Sprintf("Invalid field value for field %q.", key)
}
