// Package app wires the wizard's domain logic to its adapters: upload
// ingestion, mapping, validation, filtering, parameter edits and model runs
// all pass through here so the HTTP layer stays thin.
package app

import (
	"context"
	"io"
	"time"

	"maiveui/adapters/excel"
	"maiveui/domain/core"
	"maiveui/domain/dataset"
	"maiveui/domain/filter"
	"maiveui/domain/params"
	"maiveui/domain/results"
	"maiveui/domain/validation"
	"maiveui/internal"
	"maiveui/internal/errors"
	"maiveui/ports"
)

// AnalysisService orchestrates one wizard walkthrough per session
type AnalysisService struct {
	store     ports.SessionStore
	estimator ports.Estimator
}

// NewAnalysisService creates the service over the given store and estimator
func NewAnalysisService(store ports.SessionStore, estimator ports.Estimator) *AnalysisService {
	return &AnalysisService{store: store, estimator: estimator}
}

// UploadResult is returned after a successful upload: the new session plus
// the auto-detected mapping for the mapping step.
type UploadResult struct {
	Session *ports.Session        `json:"session"`
	Mapping dataset.ColumnMapping `json:"mapping"`
}

// Upload parses an uploaded spreadsheet, creates a fresh session with
// defaulted parameters and runs column auto-detection.
func (s *AnalysisService) Upload(ctx context.Context, filename string, src io.Reader) (*UploadResult, error) {
	sheet, err := excel.NewDataReader(filename).Read(src)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	session := &ports.Session{
		Data: &dataset.UploadedData{
			ID:          core.NewDatasetID(),
			Filename:    filename,
			ColumnNames: sheet.ColumnNames,
			RawRows:     sheet.RawRows,
			UploadedAt:  time.Now().UTC(),
		},
		Parameters: params.Defaults(),
	}
	if err := s.store.Set(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}

	mapping := dataset.AutoDetect(sheet.ColumnNames)
	internal.DefaultLogger.Info("uploaded %s: %d rows, %d columns, auto-mapped=%v",
		filename, len(sheet.RawRows), len(sheet.ColumnNames), mapping.IsComplete())

	return &UploadResult{Session: session, Mapping: mapping}, nil
}

// Session loads a wizard session
func (s *AnalysisService) Session(ctx context.Context, id core.DatasetID) (*ports.Session, error) {
	return s.store.Get(ctx, id)
}

// ApplyMapping normalizes the raw rows through the confirmed mapping,
// validates the result and persists both. The returned validation outcome is
// the gate for the next wizard step.
func (s *AnalysisService) ApplyMapping(ctx context.Context, id core.DatasetID, mapping dataset.ColumnMapping) (validation.Result, error) {
	if !mapping.IsComplete() {
		return validation.Result{}, errors.InvalidInput("effect, standard error and observation columns must all be mapped")
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return validation.Result{}, err
	}

	rows := dataset.Normalize(session.Data.RawRows, mapping)
	result := validation.Validate(rows, mapping)

	session.Data.Mapping = &mapping
	session.Data.Rows = rows
	// A mapping change invalidates any previous filter and run.
	session.Filter = nil
	session.Results = nil
	if err := s.store.Set(ctx, session); err != nil {
		return validation.Result{}, errors.Wrap(err, "failed to store session")
	}
	return result, nil
}

// EvaluateFilter applies the subsample conditions, persists the filter state
// and returns the match counts for live display.
func (s *AnalysisService) EvaluateFilter(ctx context.Context, id core.DatasetID, state filter.State) (filter.Outcome, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return filter.Outcome{}, err
	}

	conditions := state.Conditions
	if !state.IsEnabled {
		conditions = nil
	}
	outcome := filter.Apply(session.Data.RawRows, conditions, state.Joiner)

	state.MatchedRowCount = outcome.MatchedRowCount
	state.TotalRowCount = outcome.TotalRowCount
	session.Filter = &state
	if err := s.store.Set(ctx, session); err != nil {
		return filter.Outcome{}, errors.Wrap(err, "failed to store session")
	}
	return outcome, nil
}

// ParameterUpdate is the response to one parameter edit: the next consistent
// parameter set, the indirect changes for the alert stack, and the controls
// visible in the new state.
type ParameterUpdate struct {
	Parameters params.ModelParameters `json:"parameters"`
	Changes    []params.Change        `json:"changes"`
	Options    []params.OptionConfig  `json:"options"`
}

// UpdateParameter applies one user edit through the transition rules and
// persists the resulting parameters and memory.
func (s *AnalysisService) UpdateParameter(ctx context.Context, id core.DatasetID, edit params.Edit) (*ParameterUpdate, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	env := params.Context{HasStudyID: sessionHasStudyID(session)}
	next, memory := params.Transition(session.Parameters, edit, session.Memory, env)
	changes := params.TrackChanges(session.Parameters, next, edit.Field)

	session.Parameters = next
	session.Memory = memory
	if err := s.store.Set(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}

	return &ParameterUpdate{
		Parameters: next,
		Changes:    changes,
		Options: params.VisibleOptions(params.VisibilityContext{
			Parameters: next,
			HasStudyID: env.HasStudyID,
		}),
	}, nil
}

// RunResult pairs the estimator response with the parameters it ran under
// and the run metadata.
type RunResult struct {
	Results    *results.ModelResults  `json:"results"`
	Parameters params.ModelParameters `json:"parameters"`
	Meta       results.RunMeta        `json:"meta"`
}

// Run assembles the analysis rows for the current session, submits them to
// the estimator and persists the response. Rows excluded by the filter or
// carrying missing values never reach the estimator.
func (s *AnalysisService) Run(ctx context.Context, id core.DatasetID) (*RunResult, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Data.Mapping == nil {
		return nil, errors.InvalidInput("columns must be mapped before running the model")
	}

	rows, err := s.analysisRows(session)
	if err != nil {
		return nil, err
	}

	internal.DefaultLogger.Info("running %s on %d rows for session %s",
		session.Parameters.ModelType, len(rows), id)
	start := time.Now()
	res, err := s.estimator.RunModel(ctx, rows, session.Parameters)
	if err != nil {
		internal.DefaultLogger.Warn("estimator run failed for session %s: %v", id, err)
		return nil, err
	}
	took := time.Since(start)
	internal.DefaultLogger.Info("estimator run for session %s finished in %s", id, took.Round(time.Millisecond))

	session.Results = res
	session.RunAt = start.UTC()
	session.RunTook = took
	if err := s.store.Set(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}

	meta := results.RunMeta{Duration: took, Timestamp: session.RunAt}
	info := dataset.Summarize(session.Data.Filename, rows, *session.Data.Mapping)
	meta.DataInfo = &info

	return &RunResult{Results: res, Parameters: session.Parameters, Meta: meta}, nil
}

// analysisRows produces what the estimator actually receives: the filtered
// subsample, normalized, with missing-value rows dropped.
func (s *AnalysisService) analysisRows(session *ports.Session) ([]dataset.NormalizedRow, error) {
	raw := session.Data.RawRows
	if f := session.Filter; f != nil && f.IsEnabled {
		raw = filter.Apply(raw, f.Conditions, f.Joiner).Rows
	}

	normalized := dataset.Normalize(raw, *session.Data.Mapping)
	complete := make([]dataset.NormalizedRow, 0, len(normalized))
	for _, row := range normalized {
		if !row.HasMissing() {
			complete = append(complete, row)
		}
	}
	if len(complete) < validation.MinRows {
		return nil, errors.ValidationError("too few usable rows remain after filtering; loosen the filter or fix the data")
	}
	return complete, nil
}

// Reset deletes the session so the wizard starts over
func (s *AnalysisService) Reset(ctx context.Context, id core.DatasetID) error {
	return s.store.Delete(ctx, id)
}

func sessionHasStudyID(session *ports.Session) bool {
	return session.Data != nil && session.Data.Mapping != nil && session.Data.Mapping.HasStudyID()
}
