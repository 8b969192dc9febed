package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFitted is returned when a stage is used before Fit.
	ErrNotFitted = errors.New("stage is not fitted")
	// ErrEmptyInput is returned when Fit receives no rows.
	ErrEmptyInput = errors.New("no training rows")
	// ErrInvalidPipeline is returned for a malformed stage list.
	ErrInvalidPipeline = errors.New("invalid pipeline")
)

// SchemaMismatchError is returned when input width differs from what a stage was fitted on.
type SchemaMismatchError struct {
	Stage string
	Want  int
	Got   int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d columns, got %d", e.Stage, e.Want, e.Got)
}
