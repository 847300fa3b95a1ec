// Package params holds the model-parameter record and the coordination logic
// that keeps its mutually-constrained fields consistent as the user edits
// them one at a time.
package params

// ModelType selects the estimator variant
type ModelType string

const (
	ModelMAIVE ModelType = "MAIVE"
	ModelWAIVE ModelType = "WAIVE"
	ModelWLS   ModelType = "WLS"
)

// Weight selects the weighting scheme
type Weight string

const (
	WeightEqual    Weight = "equal_weights"
	WeightStandard Weight = "standard_weights"
	WeightAdjusted Weight = "adjusted_weights"
	WeightStudy    Weight = "study_weights"
)

// MaiveMethod selects the publication-bias correction method
type MaiveMethod string

const (
	MethodPET      MaiveMethod = "PET"
	MethodPEESE    MaiveMethod = "PEESE"
	MethodPETPEESE MaiveMethod = "PET-PEESE"
	MethodEK       MaiveMethod = "EK"
)

// SETreatment selects how standard errors are computed
type SETreatment string

const (
	SENotClustered SETreatment = "not_clustered"
	SEClustered    SETreatment = "clustered"
	SEClusteredCR2 SETreatment = "clustered_cr2"
	SEBootstrap    SETreatment = "bootstrap"
)

// ModelParameters is the full analysis configuration submitted to the
// estimator. Not every combination of independently-valid field values is a
// consistent state; Transition enforces the cross-field rules.
type ModelParameters struct {
	ModelType              ModelType   `json:"modelType"`
	IncludeStudyDummies    bool        `json:"includeStudyDummies"`
	IncludeStudyClustering bool        `json:"includeStudyClustering"`
	StandardErrorTreatment SETreatment `json:"standardErrorTreatment"`
	ComputeAndersonRubin   bool        `json:"computeAndersonRubin"`
	MaiveMethod            MaiveMethod `json:"maiveMethod"`
	Weight                 Weight      `json:"weight"`
	ShouldUseInstrumenting bool        `json:"shouldUseInstrumenting"`
	UseLogFirstStage       bool        `json:"useLogFirstStage"`
	Winsorize              float64     `json:"winsorize"`
}

// Defaults returns the parameter set every session starts from
func Defaults() ModelParameters {
	return ModelParameters{
		ModelType:              ModelMAIVE,
		IncludeStudyDummies:    false,
		IncludeStudyClustering: false,
		StandardErrorTreatment: SEClusteredCR2,
		ComputeAndersonRubin:   false,
		MaiveMethod:            MethodPETPEESE,
		Weight:                 WeightEqual,
		ShouldUseInstrumenting: true,
		UseLogFirstStage:       false,
		Winsorize:              0,
	}
}

// Field names one ModelParameters field for edits and change tracking
type Field string

const (
	FieldModelType              Field = "modelType"
	FieldIncludeStudyDummies    Field = "includeStudyDummies"
	FieldIncludeStudyClustering Field = "includeStudyClustering"
	FieldStandardErrorTreatment Field = "standardErrorTreatment"
	FieldComputeAndersonRubin   Field = "computeAndersonRubin"
	FieldMaiveMethod            Field = "maiveMethod"
	FieldWeight                 Field = "weight"
	FieldShouldUseInstrumenting Field = "shouldUseInstrumenting"
	FieldUseLogFirstStage       Field = "useLogFirstStage"
	FieldWinsorize              Field = "winsorize"
)

// TrackedFields is the fixed field list walked by change detection
var TrackedFields = []Field{
	FieldModelType,
	FieldIncludeStudyDummies,
	FieldIncludeStudyClustering,
	FieldStandardErrorTreatment,
	FieldComputeAndersonRubin,
	FieldMaiveMethod,
	FieldWeight,
	FieldShouldUseInstrumenting,
	FieldUseLogFirstStage,
	FieldWinsorize,
}

// FieldValue reads a field by name; unknown fields read as nil
func (p ModelParameters) FieldValue(field Field) any {
	switch field {
	case FieldModelType:
		return p.ModelType
	case FieldIncludeStudyDummies:
		return p.IncludeStudyDummies
	case FieldIncludeStudyClustering:
		return p.IncludeStudyClustering
	case FieldStandardErrorTreatment:
		return p.StandardErrorTreatment
	case FieldComputeAndersonRubin:
		return p.ComputeAndersonRubin
	case FieldMaiveMethod:
		return p.MaiveMethod
	case FieldWeight:
		return p.Weight
	case FieldShouldUseInstrumenting:
		return p.ShouldUseInstrumenting
	case FieldUseLogFirstStage:
		return p.UseLogFirstStage
	case FieldWinsorize:
		return p.Winsorize
	default:
		return nil
	}
}
