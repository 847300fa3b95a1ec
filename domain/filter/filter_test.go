package filter

import (
	"testing"

	"maiveui/domain/dataset"
)

func numberedRows(values ...float64) []dataset.RawRow {
	rows := make([]dataset.RawRow, len(values))
	for i, v := range values {
		rows[i] = dataset.RawRow{"x": v}
	}
	return rows
}

func TestApply_NoCompleteConditionsReturnsInputUnchanged(t *testing.T) {
	rows := numberedRows(1, 2, 3)
	conditions := []Condition{
		{Column: "", Operator: OpEquals, Value: "1"},
		{Column: "x", Operator: OpEquals, Value: "   "},
	}

	outcome := Apply(rows, conditions, JoinAnd)

	if len(outcome.Rows) != 3 || outcome.MatchedRowCount != 3 || outcome.TotalRowCount != 3 {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
	// Identical slice, not a filtered copy.
	if &outcome.Rows[0] != &rows[0] {
		t.Error("expected the input slice to be returned unchanged")
	}
}

func TestApply_AndVersusOr(t *testing.T) {
	rows := numberedRows(1, 2, 3)
	conditions := []Condition{
		{Column: "x", Operator: OpGreaterThan, Value: "2"},
		{Column: "x", Operator: OpLessThan, Value: "2"},
	}

	and := Apply(rows, conditions, JoinAnd)
	if and.MatchedRowCount != 0 {
		t.Errorf("AND over contradictory conditions should match 0 rows, got %d", and.MatchedRowCount)
	}

	or := Apply(rows, conditions, JoinOr)
	if or.MatchedRowCount != 2 {
		t.Errorf("OR should match rows 1 and 3, got %d", or.MatchedRowCount)
	}
	if *rowX(or.Rows[0]) != 1 || *rowX(or.Rows[1]) != 3 {
		t.Errorf("OR matched wrong rows: %+v", or.Rows)
	}
}

func rowX(row dataset.RawRow) *float64 {
	v, _ := row["x"].(float64)
	return &v
}

func TestEvaluateCondition_NumericCoercion(t *testing.T) {
	testCases := []struct {
		name string
		row  dataset.RawRow
		cond Condition
		want bool
	}{
		{"string cell compared numerically", dataset.RawRow{"n": "100"}, Condition{Column: "n", Operator: OpGreaterThanOrEqual, Value: "100"}, true},
		{"comma decimal in condition value", dataset.RawRow{"x": 1.5}, Condition{Column: "x", Operator: OpEquals, Value: "1,5"}, true},
		{"relational on non-numeric is false", dataset.RawRow{"region": "north"}, Condition{Column: "region", Operator: OpGreaterThan, Value: "m"}, false},
		{"equals falls back to case-insensitive string", dataset.RawRow{"region": " North "}, Condition{Column: "region", Operator: OpEquals, Value: "north"}, true},
		{"notEquals string fallback", dataset.RawRow{"region": "south"}, Condition{Column: "region", Operator: OpNotEquals, Value: "north"}, true},
		{"missing column is false", dataset.RawRow{"x": 1.0}, Condition{Column: "y", Operator: OpEquals, Value: "1"}, false},
		{"null cell is false even for notEquals", dataset.RawRow{"x": nil}, Condition{Column: "x", Operator: OpNotEquals, Value: "1"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := evaluateCondition(tc.row, tc.cond); got != tc.want {
				t.Errorf("evaluateCondition(%v, %+v) = %v, want %v", tc.row, tc.cond, got, tc.want)
			}
		})
	}
}

func TestApply_DoesNotMutateRows(t *testing.T) {
	rows := []dataset.RawRow{{"x": 1.0, "label": "keep"}, {"x": 2.0, "label": "drop"}}
	Apply(rows, []Condition{{Column: "x", Operator: OpEquals, Value: "1"}}, JoinAnd)

	if rows[0]["label"] != "keep" || rows[1]["label"] != "drop" {
		t.Errorf("input rows mutated: %+v", rows)
	}
	if len(rows) != 2 {
		t.Errorf("input slice resized: %d", len(rows))
	}
}

func TestSummary(t *testing.T) {
	conditions := []Condition{
		{Column: "region", Operator: OpEquals, Value: "north"},
		{Column: "", Operator: OpEquals, Value: "ignored"},
		{Column: "year", Operator: OpGreaterThanOrEqual, Value: " 2010 "},
	}

	got := Summary(conditions, JoinAnd)
	want := "region = north AND year ≥ 2010"
	if got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}

	if Summary(nil, JoinOr) != "" {
		t.Error("empty conditions should produce an empty summary")
	}
}
