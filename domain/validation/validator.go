// Package validation runs the fixed battery of structural and statistical
// checks that gates progression from column mapping to model configuration.
package validation

import (
	"fmt"
	"math"
	"strings"

	"maiveui/domain/dataset"
)

// Severity tags a validation message
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Message is one severity-tagged validation finding
type Message struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// Result is the outcome of validating a normalized dataset. IsValid is true
// iff no message carries error severity; it is the sole gate for moving to
// the model-parameters step.
type Result struct {
	IsValid  bool      `json:"is_valid"`
	Messages []Message `json:"messages"`
}

const (
	// MinRows is the smallest dataset the estimator accepts
	MinRows = 4
	// LargeDatasetRows is the row count above which a performance warning fires
	LargeDatasetRows = 2000
	// MinResidualDegrees is the headroom required beyond the distinct study
	// count so the clustering computations keep enough residual degrees of
	// freedom.
	MinResidualDegrees = 3
)

// Validate runs every check against the normalized rows. Checks append
// messages independently; errors are never thrown, always returned as data.
func Validate(rows []dataset.NormalizedRow, mapping dataset.ColumnMapping) Result {
	var messages []Message

	appendMsg := func(severity Severity, format string, args ...any) {
		messages = append(messages, Message{Severity: severity, Text: fmt.Sprintf(format, args...)})
	}

	if len(rows) < MinRows {
		appendMsg(SeverityError, "The dataset must contain at least %d rows of data; found %d.", MinRows, len(rows))
	}

	// Malformed numeric cells: one error per offending column, not per row.
	nanColumns := map[string]string{}
	for _, row := range rows {
		if isNaN(row.Effect) {
			nanColumns["effect"] = mapping.Effect
		}
		if isNaN(row.SE) {
			nanColumns["standard error"] = mapping.SE
		}
		if isNaN(row.NObs) {
			nanColumns["number of observations"] = mapping.NObs
		}
	}
	for _, field := range []string{"effect", "standard error", "number of observations"} {
		if column, found := nanColumns[field]; found {
			appendMsg(SeverityError, "The %s column (%q) contains non-numeric values; all %s values must be numbers.", field, column, field)
		}
	}

	if mapping.HasStudyID() {
		missingStudyIDs := 0
		for _, row := range rows {
			if row.StudyID == nil {
				missingStudyIDs++
			}
		}
		if missingStudyIDs > 0 {
			appendMsg(SeverityError, "The study ID column (%q) has %d empty value(s); every row must identify its study.", mapping.StudyID, missingStudyIDs)
		}
	}

	if badRows := invalidNObsRows(rows); len(badRows) > 0 {
		appendMsg(SeverityError, "The number of observations must be a positive whole number; check row(s): %s.", formatRowList(badRows))
	}

	negativeSE := false
	for _, row := range rows {
		if row.SE != nil && !math.IsNaN(*row.SE) && *row.SE < 0 {
			negativeSE = true
			break
		}
	}
	if negativeSE {
		appendMsg(SeverityError, "The standard error column (%q) contains negative values; standard errors cannot be negative.", mapping.SE)
	}

	missingRows := 0
	for _, row := range rows {
		if row.HasMissing() {
			missingRows++
		}
	}
	if missingRows > 0 {
		appendMsg(SeverityWarning, "%d row(s) have missing values and will be excluded from the analysis.", missingRows)
	}

	if mapping.HasStudyID() {
		studies := dataset.DistinctStudyCount(rows)
		if required := studies + MinResidualDegrees; studies > 0 && len(rows) < required {
			appendMsg(SeverityError, "The dataset has %d rows for %d distinct studies; at least %d rows are required to retain enough residual degrees of freedom.", len(rows), studies, required)
		}
	}

	if len(rows) > LargeDatasetRows {
		appendMsg(SeverityWarning, "Large dataset (%d rows); validation and filtering may take noticeably longer.", len(rows))
	}

	hasError := false
	for _, msg := range messages {
		if msg.Severity == SeverityError {
			hasError = true
			break
		}
	}
	if !hasError {
		appendMsg(SeveritySuccess, "Data validation passed. The dataset is ready for analysis.")
	}

	return Result{IsValid: !hasError, Messages: messages}
}

func isNaN(v *float64) bool {
	return v != nil && math.IsNaN(*v)
}

// invalidNObsRows returns the 1-based indices of rows whose n_obs is present,
// finite, and not a positive integer.
func invalidNObsRows(rows []dataset.NormalizedRow) []int {
	var indices []int
	for i, row := range rows {
		if row.NObs == nil {
			continue
		}
		v := *row.NObs
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue // already reported as non-numeric
		}
		if v <= 0 || v != math.Trunc(v) {
			indices = append(indices, i+1)
		}
	}
	return indices
}

// formatRowList renders up to the first three offending row indices, with an
// ellipsis when more exist.
func formatRowList(indices []int) string {
	const maxShown = 3
	shown := indices
	truncated := false
	if len(shown) > maxShown {
		shown = shown[:maxShown]
		truncated = true
	}
	parts := make([]string, len(shown))
	for i, idx := range shown {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	list := strings.Join(parts, ", ")
	if truncated {
		list += ", …"
	}
	return list
}
