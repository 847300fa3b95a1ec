package params

// VisibilityContext is what visibility predicates evaluate against
type VisibilityContext struct {
	Parameters ModelParameters
	HasStudyID bool
}

// ControlType tells the renderer which control an option uses
type ControlType string

const (
	ControlDropdown ControlType = "dropdown"
	ControlYesNo    ControlType = "yesno"
	ControlSlider   ControlType = "slider"
)

// Choice is one selectable value of a dropdown option
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionConfig declares one model-parameter control: its field, control type,
// choices and an optional visibility predicate. Conditional applicability
// lives here, data-driven, rather than in the rendering layer.
type OptionConfig struct {
	Key      Field       `json:"key"`
	Label    string      `json:"label"`
	Type     ControlType `json:"type"`
	Choices  []Choice    `json:"choices,omitempty"`
	Advanced bool        `json:"advanced"`
	hideWhen func(VisibilityContext) bool
}

// Visible evaluates the option's visibility predicate
func (o OptionConfig) Visible(ctx VisibilityContext) bool {
	return o.hideWhen == nil || !o.hideWhen(ctx)
}

// OptionsConfig is the declarative wizard-control catalogue, in display order
var OptionsConfig = []OptionConfig{
	{
		Key:   FieldModelType,
		Label: "Model Type",
		Type:  ControlDropdown,
		Choices: []Choice{
			{Value: string(ModelMAIVE), Label: "MAIVE"},
			{Value: string(ModelWAIVE), Label: "WAIVE"},
			{Value: string(ModelWLS), Label: "WLS"},
		},
	},
	{
		Key:   FieldIncludeStudyClustering,
		Label: "Include Study Clustering",
		Type:  ControlYesNo,
		hideWhen: func(ctx VisibilityContext) bool {
			// Clustering has no effect without a study-id column.
			return !ctx.HasStudyID
		},
	},
	{
		Key:   FieldStandardErrorTreatment,
		Label: "Standard Error Treatment",
		Type:  ControlDropdown,
		Choices: []Choice{
			{Value: string(SENotClustered), Label: "Not Clustered"},
			{Value: string(SEClustered), Label: "Clustered"},
			{Value: string(SEClusteredCR2), Label: "Clustered using CR2"},
			{Value: string(SEBootstrap), Label: "Bootstrap"},
		},
	},
	{
		Key:   FieldComputeAndersonRubin,
		Label: "Compute Anderson-Rubin Confidence Interval",
		Type:  ControlYesNo,
		hideWhen: func(ctx VisibilityContext) bool {
			return !AndersonRubinVisible(ctx.Parameters)
		},
	},
	{
		Key:      FieldMaiveMethod,
		Label:    "MAIVE Method",
		Type:     ControlDropdown,
		Advanced: true,
		Choices: []Choice{
			{Value: string(MethodPET), Label: "PET"},
			{Value: string(MethodPEESE), Label: "PEESE"},
			{Value: string(MethodPETPEESE), Label: "PET-PEESE"},
			{Value: string(MethodEK), Label: "EK"},
		},
		hideWhen: func(ctx VisibilityContext) bool {
			// Forced to PET-PEESE for WAIVE, so there is nothing to choose.
			return ctx.Parameters.ModelType == ModelWAIVE
		},
	},
	{
		Key:      FieldShouldUseInstrumenting,
		Label:    "Use Instrumenting",
		Type:     ControlYesNo,
		Advanced: true,
		hideWhen: func(ctx VisibilityContext) bool {
			// Forced on for WAIVE and off for WLS.
			return ctx.Parameters.ModelType != ModelMAIVE
		},
	},
	{
		Key:      FieldIncludeStudyDummies,
		Label:    "Include Study Dummies",
		Type:     ControlYesNo,
		Advanced: true,
	},
	{
		Key:      FieldWeight,
		Label:    "Weighting Scheme",
		Type:     ControlDropdown,
		Advanced: true,
		Choices: []Choice{
			{Value: string(WeightEqual), Label: "Equal Weights"},
			{Value: string(WeightStandard), Label: "Standard Weights"},
			{Value: string(WeightAdjusted), Label: "Adjusted Weights"},
			{Value: string(WeightStudy), Label: "Study Weights"},
		},
	},
	{
		Key:      FieldUseLogFirstStage,
		Label:    "Logarithmic First Stage",
		Type:     ControlYesNo,
		Advanced: true,
		hideWhen: func(ctx VisibilityContext) bool {
			return ctx.Parameters.ModelType == ModelWAIVE
		},
	},
	{
		Key:      FieldWinsorize,
		Label:    "Winsorize (%)",
		Type:     ControlSlider,
		Advanced: true,
	},
}

// VisibleOptions filters the catalogue through each option's predicate
func VisibleOptions(ctx VisibilityContext) []OptionConfig {
	visible := make([]OptionConfig, 0, len(OptionsConfig))
	for _, option := range OptionsConfig {
		if option.Visible(ctx) {
			visible = append(visible, option)
		}
	}
	return visible
}
