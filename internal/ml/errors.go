// Package ml provides clients and caching around the housing price estimator.
package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed indicates the prediction API could not be reached
	ErrConnectionFailed = errors.New("prediction api connection failed")

	// ErrMissingPrediction indicates a response without a usable prediction field
	ErrMissingPrediction = errors.New("missing prediction field")

	// ErrInvalidResponse indicates a response body that is not a JSON object
	ErrInvalidResponse = errors.New("invalid response from prediction api")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prediction api returned status %d: %s", e.StatusCode, e.Body)
}
