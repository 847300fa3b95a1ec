package results

import (
	"encoding/json"
	"testing"
	"time"

	"maiveui/domain/dataset"
	"maiveui/domain/params"
)

func sampleResults() ModelResults {
	return ModelResults{
		EffectEstimate:  0.12345,
		StandardError:   0.056789,
		IsSignificant:   true,
		AndersonRubinCI: OptionalCI{Valid: true, Value: CI{0.01, 0.25}},
		PublicationBias: PublicationBias{
			EggerCoef:     1.5,
			EggerSE:       0.75,
			IsSignificant: false,
		},
		FirstStageFTest: OptionalFloat{Valid: true, Value: 23.4},
		HausmanTest:     HausmanTest{Statistic: 3.2, CriticalValue: 3.84, RejectsNull: false},
	}
}

func findRow(rows []Row, label string) *Row {
	for i := range rows {
		if rows[i].Label == label {
			return &rows[i]
		}
	}
	return nil
}

func TestProject_FormatsToFourDecimals(t *testing.T) {
	rows := Project(sampleResults(), params.Defaults(), nil)

	if row := findRow(rows, "Effect Estimate"); row == nil || row.Value != "0.1235" {
		t.Errorf("effect estimate = %+v, want 0.1235", row)
	}
	if row := findRow(rows, "Standard Error"); row == nil || row.Value != "0.0568" {
		t.Errorf("standard error = %+v, want 0.0568", row)
	}
	if row := findRow(rows, "Anderson-Rubin 95% CI"); row == nil || row.Value != "[0.0100, 0.2500]" || !row.Show {
		t.Errorf("AR CI row = %+v", row)
	}
}

func TestProject_AndersonRubinHiddenWhenNA(t *testing.T) {
	res := sampleResults()
	res.AndersonRubinCI = OptionalCI{}

	rows := Project(res, params.Defaults(), nil)
	row := findRow(rows, "Anderson-Rubin 95% CI")
	if row == nil || row.Show {
		t.Errorf("NA Anderson-Rubin CI must be hidden, got %+v", row)
	}
	if row.Value != "NA" {
		t.Errorf("hidden row still carries NA for exports, got %q", row.Value)
	}
}

func TestProject_HausmanHiddenForWAIVEAndStudyDummies(t *testing.T) {
	res := sampleResults()

	p := params.Defaults()
	p.ModelType = params.ModelWAIVE
	rows := Project(res, p, nil)
	if row := findRow(rows, "Hausman Test Statistic"); row == nil || row.Show {
		t.Error("Hausman rows must be hidden for WAIVE")
	}

	p = params.Defaults()
	p.IncludeStudyDummies = true
	rows = Project(res, p, nil)
	if row := findRow(rows, "Hausman Test Statistic"); row == nil || row.Show {
		t.Error("Hausman rows must be hidden with study dummies")
	}

	rows = Project(res, params.Defaults(), nil)
	if row := findRow(rows, "Hausman Test Statistic"); row == nil || !row.Show {
		t.Error("Hausman rows must be shown for plain MAIVE")
	}
}

func TestProject_BootstrapRowsFollowSETreatment(t *testing.T) {
	res := sampleResults()
	res.BootCI = OptionalCIPair{Valid: true, Effect: CI{0.1, 0.2}, SE: CI{0.01, 0.02}}
	res.BootSE = OptionalPair{Valid: true, Effect: 0.03, SE: 0.004}

	rows := Project(res, params.Defaults(), nil)
	if row := findRow(rows, "Bootstrap CI (Effect)"); row == nil || row.Show {
		t.Error("bootstrap rows must be hidden for non-bootstrap treatments")
	}

	p := params.Defaults()
	p.StandardErrorTreatment = params.SEBootstrap
	rows = Project(res, p, nil)
	if row := findRow(rows, "Bootstrap CI (Effect)"); row == nil || !row.Show || row.Value != "[0.1000, 0.2000]" {
		t.Errorf("bootstrap CI row = %+v", row)
	}
}

func TestProject_SignificanceHighlight(t *testing.T) {
	rows := Project(sampleResults(), params.Defaults(), nil)

	if row := findRow(rows, "Significant at 5% level"); row == nil || row.Value != "Yes" || !row.Highlight {
		t.Errorf("significance row = %+v", row)
	}
	if row := findRow(rows, "Publication Bias Significant at 5% level"); row == nil || row.Value != "No" || row.Highlight {
		t.Errorf("publication bias significance row = %+v", row)
	}
}

func TestProject_RunMetaSection(t *testing.T) {
	meta := &RunMeta{
		Duration:  1530 * time.Millisecond,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DataInfo: &dataset.DataInfo{
			Filename:                   "meta.xlsx",
			RowCount:                   120,
			HasStudyID:                 true,
			StudyCount:                 30,
			MedianObservationsPerStudy: 4,
		},
	}

	rows := Project(sampleResults(), params.Defaults(), meta)

	if row := findRow(rows, "Run Duration"); row == nil || row.Value != "1.53s" {
		t.Errorf("run duration row = %+v", row)
	}
	if row := findRow(rows, "Distinct Studies"); row == nil || row.Value != "30" {
		t.Errorf("study count row = %+v", row)
	}
	if row := findRow(rows, "Median Observations per Study"); row == nil || row.Value != "4" {
		t.Errorf("median row = %+v", row)
	}
}

func TestVisibleRows(t *testing.T) {
	rows := []Row{{Label: "a", Show: true}, {Label: "b", Show: false}, {Label: "c", Show: true}}
	visible := VisibleRows(rows)
	if len(visible) != 2 || visible[0].Label != "a" || visible[1].Label != "c" {
		t.Errorf("VisibleRows = %+v", visible)
	}
}

func TestModelResults_DecodesNAMarkers(t *testing.T) {
	payload := []byte(`{
		"effectEstimate": 0.5,
		"standardError": 0.1,
		"isSignificant": true,
		"andersonRubinCI": "NA",
		"publicationBias": {
			"eggerCoef": 1.0,
			"eggerSE": 0.4,
			"isSignificant": true,
			"eggerBootCI": "NA",
			"eggerAndersonRubinCI": [0.2, 1.8]
		},
		"firstStageFTest": "NA",
		"hausmanTest": {"statistic": 2.1, "criticalValue": 3.84, "rejectsNull": false},
		"bootCI": "NA",
		"bootSE": "NA"
	}`)

	var res ModelResults
	if err := json.Unmarshal(payload, &res); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if res.AndersonRubinCI.Valid || res.FirstStageFTest.Valid || res.BootCI.Valid || res.BootSE.Valid {
		t.Error("NA markers must decode as invalid optionals")
	}
	if !res.PublicationBias.EggerAndersonRubinCI.Valid || res.PublicationBias.EggerAndersonRubinCI.Value != (CI{0.2, 1.8}) {
		t.Errorf("numeric CI mis-decoded: %+v", res.PublicationBias.EggerAndersonRubinCI)
	}
}
