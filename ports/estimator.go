package ports

import (
	"context"

	"maiveui/domain/dataset"
	"maiveui/domain/params"
	"maiveui/domain/results"
)

// Estimator defines the interface to the remote MAIVE estimation service.
// RunModel is cancellable through the context; implementations must return
// typed errors distinguishing abort, timeout, server rejection and transport
// failure, and must never swallow non-2xx responses.
type Estimator interface {
	RunModel(ctx context.Context, rows []dataset.NormalizedRow, p params.ModelParameters) (*results.ModelResults, error)
	Ping(ctx context.Context) error
}
