// Package filter evaluates user-defined subsample conditions against dataset
// rows so a run can target a subset of the uploaded observations.
package filter

import (
	"fmt"
	"strings"

	"maiveui/domain/dataset"
)

// Operator is a comparison applied between a row value and a condition value
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpGreaterThan        Operator = "greaterThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThan           Operator = "lessThan"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
)

// Joiner combines multiple conditions
type Joiner string

const (
	JoinAnd Joiner = "AND"
	JoinOr  Joiner = "OR"
)

// Condition is one column/operator/value predicate. A condition is complete
// iff its column is non-empty and its value is non-empty after trimming;
// incomplete conditions are ignored during evaluation, never errors.
type Condition struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// IsComplete reports whether the condition participates in evaluation
func (c Condition) IsComplete() bool {
	return c.Column != "" && strings.TrimSpace(c.Value) != ""
}

// State captures the filter configuration plus its last evaluation counts
type State struct {
	IsEnabled       bool        `json:"is_enabled"`
	Conditions      []Condition `json:"conditions"`
	Joiner          Joiner      `json:"joiner"`
	MatchedRowCount int         `json:"matched_row_count"`
	TotalRowCount   int         `json:"total_row_count"`
}

// Outcome is the result of one filter evaluation
type Outcome struct {
	Rows            []dataset.RawRow
	MatchedRowCount int
	TotalRowCount   int
}

// parseNumeric mirrors the loose numeric coercion used for comparisons: raw
// numbers pass through, strings are trimmed and parsed, everything else is
// non-numeric.
func parseNumeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		return dataset.ParseLocalizedNumber(trimmed)
	default:
		return 0, false
	}
}

func normalizeString(value any) string {
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(value)))
}

// evaluateCondition applies one complete condition to a row. A missing or
// null row value evaluates false. When both sides parse numerically the
// comparison is numeric; otherwise equals/notEquals fall back to
// case-insensitive trimmed string comparison and relational operators
// evaluate false.
func evaluateCondition(row dataset.RawRow, cond Condition) bool {
	rowValue, present := row[cond.Column]
	if !present || rowValue == nil {
		return false
	}

	rowNumber, rowNumeric := parseNumeric(rowValue)
	condNumber, condNumeric := parseNumeric(cond.Value)
	numeric := rowNumeric && condNumeric

	switch cond.Operator {
	case OpEquals:
		if numeric {
			return rowNumber == condNumber
		}
		return normalizeString(rowValue) == normalizeString(cond.Value)
	case OpNotEquals:
		if numeric {
			return rowNumber != condNumber
		}
		return normalizeString(rowValue) != normalizeString(cond.Value)
	case OpGreaterThan:
		return numeric && rowNumber > condNumber
	case OpGreaterThanOrEqual:
		return numeric && rowNumber >= condNumber
	case OpLessThan:
		return numeric && rowNumber < condNumber
	case OpLessThanOrEqual:
		return numeric && rowNumber <= condNumber
	default:
		return false
	}
}

// completeConditions drops incomplete conditions from evaluation
func completeConditions(conditions []Condition) []Condition {
	var complete []Condition
	for _, cond := range conditions {
		if cond.IsComplete() {
			complete = append(complete, cond)
		}
	}
	return complete
}

// Apply evaluates the conditions against every row. With zero complete
// conditions the input slice is returned unchanged; otherwise rows must
// satisfy every condition under AND or at least one under OR. Input rows are
// never mutated.
func Apply(rows []dataset.RawRow, conditions []Condition, joiner Joiner) Outcome {
	complete := completeConditions(conditions)
	if len(complete) == 0 {
		return Outcome{Rows: rows, MatchedRowCount: len(rows), TotalRowCount: len(rows)}
	}

	matched := make([]dataset.RawRow, 0, len(rows))
	for _, row := range rows {
		if matchesRow(row, complete, joiner) {
			matched = append(matched, row)
		}
	}
	return Outcome{Rows: matched, MatchedRowCount: len(matched), TotalRowCount: len(rows)}
}

func matchesRow(row dataset.RawRow, conditions []Condition, joiner Joiner) bool {
	if joiner == JoinOr && len(conditions) > 1 {
		for _, cond := range conditions {
			if evaluateCondition(row, cond) {
				return true
			}
		}
		return false
	}
	for _, cond := range conditions {
		if !evaluateCondition(row, cond) {
			return false
		}
	}
	return true
}

// OperatorSymbol renders an operator for filter summaries
func OperatorSymbol(op Operator) string {
	switch op {
	case OpEquals:
		return "="
	case OpNotEquals:
		return "≠"
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return "≥"
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "≤"
	default:
		return "="
	}
}

// Summary renders the complete conditions as a human-readable expression,
// e.g. "region = north AND year ≥ 2010". Empty when nothing is complete.
func Summary(conditions []Condition, joiner Joiner) string {
	complete := completeConditions(conditions)
	if len(complete) == 0 {
		return ""
	}
	parts := make([]string, len(complete))
	for i, cond := range complete {
		parts[i] = cond.Column + " " + OperatorSymbol(cond.Operator) + " " + strings.TrimSpace(cond.Value)
	}
	return strings.Join(parts, " "+string(joiner)+" ")
}
