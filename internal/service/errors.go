package service

import (
	"fmt"

	"github.com/yourusername/housing-predictor/internal/features"
)

// ValidationError wraps request fields that violate the feature contract.
// Nothing is recorded for a rejected request.
type ValidationError struct {
	Errors features.ValidationErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Errors.Error())
}

func (e *ValidationError) Unwrap() error { return e.Errors }

// PredictionError is returned when the estimator fails on a valid request.
// The scoped transaction is rolled back.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string { return e.Err.Error() }

func (e *PredictionError) Unwrap() error { return e.Err }

// PersistenceError is returned when the audit record cannot be committed.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }
