// Package datasource fetches raw datasets and talks to remote HTTP services.
package datasource

import (
	"context"
	"errors"
	"io"
)

// ErrSourceNotConfigured is returned when no dataset location was given.
var ErrSourceNotConfigured = errors.New("dataset source not configured")

// Source yields the raw bytes of a dataset.
type Source interface {
	// Open returns a reader over the dataset; the caller closes it.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name identifies the source in logs.
	Name() string
}
