package params

import "fmt"

// Change reports one field that moved as a side effect of a user edit,
// paired with a best-effort explanation for the UI alert stack. Advisory
// only; it never feeds back into ModelParameters.
type Change struct {
	Field    Field  `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
	Message  string `json:"message"`
}

// explanationRule matches one indirect change and supplies its message.
// Rules are evaluated in order; the first match wins.
type explanationRule struct {
	matches func(prev, next ModelParameters, edited, field Field) bool
	message string
}

var explanationRules = []explanationRule{
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldModelType && next.ModelType == ModelWLS && field == FieldShouldUseInstrumenting
		},
		message: "WLS does not use instrumenting, so it was turned off.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldModelType && next.ModelType == ModelWLS && field == FieldWeight
		},
		message: "WLS runs with standard weights unless another weighting scheme was chosen earlier.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldModelType && next.ModelType == ModelWLS && field == FieldComputeAndersonRubin
		},
		message: "The Anderson-Rubin confidence interval is unavailable for WLS and was turned off.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldModelType && next.ModelType == ModelWAIVE && field == FieldShouldUseInstrumenting
		},
		message: "WAIVE requires instrumenting, so it was turned on.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldModelType && next.ModelType == ModelWAIVE && field == FieldMaiveMethod
		},
		message: "WAIVE always uses the PET-PEESE method.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldModelType && next.ModelType == ModelWAIVE && field == FieldUseLogFirstStage
		},
		message: "WAIVE runs the first stage in logarithms.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldModelType && next.ModelType == ModelMAIVE && field == FieldShouldUseInstrumenting
		},
		message: "MAIVE uses instrumenting, so it was turned back on.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldModelType && next.ModelType == ModelMAIVE && field == FieldWeight
		},
		message: "The weighting scheme you used before switching to WLS was restored.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldWeight && field == FieldComputeAndersonRubin && !next.ComputeAndersonRubin
		},
		message: "The Anderson-Rubin confidence interval requires equal weights and was turned off.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldWeight && field == FieldComputeAndersonRubin && next.ComputeAndersonRubin
		},
		message: "Equal weights are selected again, so your Anderson-Rubin choice was restored.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldIncludeStudyDummies && field == FieldComputeAndersonRubin && !next.ComputeAndersonRubin
		},
		message: "The Anderson-Rubin confidence interval is unavailable with study dummies and was turned off.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldIncludeStudyDummies && field == FieldComputeAndersonRubin && next.ComputeAndersonRubin
		},
		message: "Study dummies are off again, so your Anderson-Rubin choice was restored.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldStandardErrorTreatment && field == FieldIncludeStudyClustering
		},
		message: "Study clustering was adjusted to match the standard-error treatment.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldShouldUseInstrumenting && field == FieldWeight
		},
		message: "Adjusted weights are only meaningful with instrumenting, so the weighting scheme was reset to standard weights.",
	},
	{
		matches: func(prev, next ModelParameters, edited, field Field) bool {
			return edited == FieldShouldUseInstrumenting && field == FieldComputeAndersonRubin
		},
		message: "The Anderson-Rubin confidence interval requires instrumenting and was turned off.",
	},
}

// TrackChanges compares previous and next parameters field-by-field over the
// fixed tracked list and reports every field that changed as a side effect of
// the edit, excluding the directly edited field. Pure; output is advisory.
func TrackChanges(prev, next ModelParameters, edited Field) []Change {
	var changes []Change
	for _, field := range TrackedFields {
		if field == edited {
			continue
		}
		oldValue := prev.FieldValue(field)
		newValue := next.FieldValue(field)
		if oldValue == newValue {
			continue
		}
		changes = append(changes, Change{
			Field:    field,
			OldValue: oldValue,
			NewValue: newValue,
			Message:  explain(prev, next, edited, field, newValue),
		})
	}
	return changes
}

func explain(prev, next ModelParameters, edited, field Field, newValue any) string {
	for _, rule := range explanationRules {
		if rule.matches(prev, next, edited, field) {
			return rule.message
		}
	}
	return fmt.Sprintf("%s was set to %v.", field, newValue)
}
