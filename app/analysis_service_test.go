package app

import (
	"context"
	"strings"
	"testing"

	"maiveui/domain/dataset"
	"maiveui/domain/filter"
	"maiveui/domain/params"
	"maiveui/domain/results"
	"maiveui/internal/errors"
	"maiveui/internal/store"
)

// Six rows over two studies, enough residual degrees of freedom to validate.
const sampleCSV = `Estimate,StdErr,N,Study
0.5,0.1,100,alpha
0.3,0.12,80,alpha
0.7,0.2,150,beta
0.2,0.05,60,beta
0.4,0.08,90,alpha
0.6,0.15,70,beta
`

// fakeEstimator records what it was asked to run
type fakeEstimator struct {
	rows     []dataset.NormalizedRow
	params   params.ModelParameters
	response *results.ModelResults
	err      error
}

func (f *fakeEstimator) RunModel(_ context.Context, rows []dataset.NormalizedRow, p params.ModelParameters) (*results.ModelResults, error) {
	f.rows = rows
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeEstimator) Ping(context.Context) error { return nil }

func newTestService(est *fakeEstimator) *AnalysisService {
	return NewAnalysisService(store.NewSessionCache(), est)
}

func TestAnalysisService_UploadDetectsMapping(t *testing.T) {
	svc := newTestService(&fakeEstimator{})

	upload, err := svc.Upload(context.Background(), "meta.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	want := dataset.ColumnMapping{Effect: "Estimate", SE: "StdErr", NObs: "N", StudyID: "Study"}
	if upload.Mapping != want {
		t.Errorf("auto-detected mapping = %+v, want %+v", upload.Mapping, want)
	}
	if len(upload.Session.Data.RawRows) != 6 {
		t.Errorf("expected 6 data rows, got %d", len(upload.Session.Data.RawRows))
	}
	if upload.Session.Parameters != params.Defaults() {
		t.Errorf("new sessions must start from default parameters")
	}
}

func TestAnalysisService_ApplyMappingValidates(t *testing.T) {
	svc := newTestService(&fakeEstimator{})
	upload, err := svc.Upload(context.Background(), "meta.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	result, err := svc.ApplyMapping(context.Background(), upload.Session.Data.ID, upload.Mapping)
	if err != nil {
		t.Fatalf("apply mapping failed: %v", err)
	}
	if !result.IsValid {
		t.Errorf("sample data should validate: %+v", result.Messages)
	}

	// An incomplete mapping is rejected before touching the session.
	_, err = svc.ApplyMapping(context.Background(), upload.Session.Data.ID, dataset.ColumnMapping{Effect: "Estimate"})
	if !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestAnalysisService_RunSubmitsFilteredCompleteRows(t *testing.T) {
	est := &fakeEstimator{response: &results.ModelResults{EffectEstimate: 0.4}}
	svc := newTestService(est)
	ctx := context.Background()

	upload, err := svc.Upload(ctx, "meta.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	id := upload.Session.Data.ID
	if _, err := svc.ApplyMapping(ctx, id, upload.Mapping); err != nil {
		t.Fatal(err)
	}

	// Keep only rows with N >= 80: drops the 60- and 70-observation rows.
	_, err = svc.EvaluateFilter(ctx, id, filter.State{
		IsEnabled:  true,
		Joiner:     filter.JoinAnd,
		Conditions: []filter.Condition{{Column: "N", Operator: filter.OpGreaterThanOrEqual, Value: "80"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	run, err := svc.Run(ctx, id)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(est.rows) != 4 {
		t.Errorf("estimator should receive the 4 filtered rows, got %d", len(est.rows))
	}
	if run.Results.EffectEstimate != 0.4 {
		t.Errorf("estimator response not surfaced: %+v", run.Results)
	}
	if run.Meta.DataInfo == nil || run.Meta.DataInfo.RowCount != 4 {
		t.Errorf("run metadata should describe the submitted rows: %+v", run.Meta.DataInfo)
	}

	session, err := svc.Session(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if session.Results == nil || session.RunAt.IsZero() {
		t.Error("run output must be persisted on the session")
	}
}

func TestAnalysisService_RunRejectsOverFilteredData(t *testing.T) {
	svc := newTestService(&fakeEstimator{response: &results.ModelResults{}})
	ctx := context.Background()

	upload, _ := svc.Upload(ctx, "meta.csv", strings.NewReader(sampleCSV))
	id := upload.Session.Data.ID
	if _, err := svc.ApplyMapping(ctx, id, upload.Mapping); err != nil {
		t.Fatal(err)
	}

	_, err := svc.EvaluateFilter(ctx, id, filter.State{
		IsEnabled:  true,
		Joiner:     filter.JoinAnd,
		Conditions: []filter.Condition{{Column: "N", Operator: filter.OpGreaterThan, Value: "120"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Run(ctx, id)
	if !errors.HasCode(err, errors.CodeValidationError) {
		t.Errorf("expected VALIDATION_ERROR for too few rows, got %v", err)
	}
}

func TestAnalysisService_UpdateParameterPersistsMemory(t *testing.T) {
	svc := newTestService(&fakeEstimator{})
	ctx := context.Background()

	upload, _ := svc.Upload(ctx, "meta.csv", strings.NewReader(sampleCSV))
	id := upload.Session.Data.ID
	if _, err := svc.ApplyMapping(ctx, id, upload.Mapping); err != nil {
		t.Fatal(err)
	}

	// Turn Anderson-Rubin on, hide it behind standard weights, bring it back.
	if _, err := svc.UpdateParameter(ctx, id, params.SetAndersonRubin(true)); err != nil {
		t.Fatal(err)
	}
	update, err := svc.UpdateParameter(ctx, id, params.SetWeight(params.WeightStandard))
	if err != nil {
		t.Fatal(err)
	}
	if update.Parameters.ComputeAndersonRubin {
		t.Error("Anderson-Rubin must be forced off without equal weights")
	}
	update, err = svc.UpdateParameter(ctx, id, params.SetWeight(params.WeightEqual))
	if err != nil {
		t.Fatal(err)
	}
	if !update.Parameters.ComputeAndersonRubin {
		t.Error("the remembered Anderson-Rubin choice must survive across requests")
	}
	if len(update.Options) == 0 {
		t.Error("visible options should accompany every update")
	}
}

func TestAnalysisService_EstimatorErrorsPassThrough(t *testing.T) {
	est := &fakeEstimator{err: errors.EstimatorRejected("model failed to converge")}
	svc := newTestService(est)
	ctx := context.Background()

	upload, _ := svc.Upload(ctx, "meta.csv", strings.NewReader(sampleCSV))
	id := upload.Session.Data.ID
	if _, err := svc.ApplyMapping(ctx, id, upload.Mapping); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Run(ctx, id)
	if !errors.HasCode(err, errors.CodeEstimatorRejected) {
		t.Errorf("expected ESTIMATOR_REJECTED, got %v", err)
	}
}
