package models

import "errors"

// ErrInvalidRecord is returned when a record cannot be built from its inputs.
var ErrInvalidRecord = errors.New("invalid record")
