package trajet

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode is the machine readable code surfaced to API clients.
type ErrorCode string

const (
	CodeMissingParameters   ErrorCode = "MISSING_PARAMETERS"
	CodeInvalidParameter    ErrorCode = "INVALID_PARAMETER"
	CodeDepartureNotFound   ErrorCode = "DEPARTURE_NOT_FOUND"
	CodeDestinationNotFound ErrorCode = "DESTINATION_NOT_FOUND"
	CodeNoRouteFound        ErrorCode = "NO_ROUTE_FOUND"
	CodeStorageError        ErrorCode = "STORAGE_ERROR"
	CodeInvalidCoordinates  ErrorCode = "INVALID_COORDINATES"
	CodeLineNotFound        ErrorCode = "LINE_NOT_FOUND"

	// CodeCanceled labels searches abandoned by the caller. It never reaches
	// a client, which has already gone away.
	CodeCanceled ErrorCode = "CANCELED"
)

// ValidationError reports missing or malformed query parameters.
type ValidationError struct {
	Code    ErrorCode
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFoundError reports that no stop or no route matched the query.
type NotFoundError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string

	// Set for NO_ROUTE_FOUND only.
	Depart      *Endpoint
	Destination *Endpoint
	Hint        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// StorageError wraps a failure of the stop repository.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// InvalidCoordinateError reports an absent or non-numeric latitude/longitude.
type InvalidCoordinateError struct {
	Message string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("%s: %s", CodeInvalidCoordinates, e.Message)
}

// CodeOf returns the ErrorCode carried by err. Context cancellation maps to
// CodeCanceled and any other untyped error to CodeStorageError.
func CodeOf(err error) ErrorCode {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var coordErr *InvalidCoordinateError

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Code
	case errors.As(err, &notFoundErr):
		return notFoundErr.Code
	case errors.As(err, &coordErr):
		return CodeInvalidCoordinates
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeStorageError
	}
}

func storageErr(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
