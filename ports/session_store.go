package ports

import (
	"context"
	"time"

	"maiveui/domain/core"
	"maiveui/domain/dataset"
	"maiveui/domain/filter"
	"maiveui/domain/params"
	"maiveui/domain/results"
)

// Session is everything the wizard keeps for one uploaded dataset across
// page navigations: the dataset and its mapping, the subsample filter, the
// model parameters plus the transition memory, and the latest run output.
type Session struct {
	Data       *dataset.UploadedData  `json:"data"`
	Filter     *filter.State          `json:"filter,omitempty"`
	Parameters params.ModelParameters `json:"parameters"`
	Memory     params.Memory          `json:"memory"`

	Results *results.ModelResults `json:"results,omitempty"`
	RunAt   time.Time             `json:"run_at,omitempty"`
	RunTook time.Duration         `json:"run_took,omitempty"`
}

// SessionStore persists wizard sessions keyed by dataset id. Lifecycle is
// process-scoped for the in-memory implementation and durable for the
// database-backed one; callers must not assume either.
type SessionStore interface {
	Get(ctx context.Context, id core.DatasetID) (*Session, error)
	Set(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id core.DatasetID) error
	Clear(ctx context.Context) error
}
