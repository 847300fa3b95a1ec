package params

// Edit is one user-initiated field change. Values arrive through the typed
// constructors below; the transition itself is a total function over the
// legal input domain and has no failure path.
type Edit struct {
	Field Field
	Value any
}

// Typed edit constructors
func SetModelType(v ModelType) Edit     { return Edit{FieldModelType, v} }
func SetWeight(v Weight) Edit           { return Edit{FieldWeight, v} }
func SetMaiveMethod(v MaiveMethod) Edit { return Edit{FieldMaiveMethod, v} }
func SetSETreatment(v SETreatment) Edit { return Edit{FieldStandardErrorTreatment, v} }
func SetStudyDummies(v bool) Edit       { return Edit{FieldIncludeStudyDummies, v} }
func SetStudyClustering(v bool) Edit    { return Edit{FieldIncludeStudyClustering, v} }
func SetAndersonRubin(v bool) Edit      { return Edit{FieldComputeAndersonRubin, v} }
func SetInstrumenting(v bool) Edit      { return Edit{FieldShouldUseInstrumenting, v} }
func SetLogFirstStage(v bool) Edit      { return Edit{FieldUseLogFirstStage, v} }
func SetWinsorize(v float64) Edit       { return Edit{FieldWinsorize, v} }

// Memory carries the session-scoped "remembered last choice" state across
// transitions. It is an explicit input/output of Transition, not part of
// ModelParameters, and is never submitted to the estimator.
type Memory struct {
	// AndersonRubinChoice is the last deliberate Anderson-Rubin setting,
	// restored when the toggle becomes visible again.
	AndersonRubinChoice *bool
	// WeightOverride is the last weighting scheme the user picked explicitly.
	WeightOverride *Weight
	// WeightBeforeWLS remembers the instrumented weighting scheme across a
	// WLS detour so it can be restored on return.
	WeightBeforeWLS *Weight
}

// Context carries dataset facts the rules depend on
type Context struct {
	// HasStudyID is true when a study-id column is mapped; clustering rules
	// only apply then.
	HasStudyID bool
}

// AndersonRubinVisible reports whether the Anderson-Rubin toggle is shown and
// settable for the given parameters. Study dummies rule it out along with
// non-equal weights and disabled instrumenting.
func AndersonRubinVisible(p ModelParameters) bool {
	return p.ShouldUseInstrumenting && p.Weight == WeightEqual && !p.IncludeStudyDummies
}

// transitionState is what each implication rule sees and mutates
type transitionState struct {
	prev ModelParameters
	next *ModelParameters
	mem  *Memory
	edit Edit
	env  Context
}

// implicationRules is the ordered rule list applied after each user edit.
// Later rules may depend on the results of earlier ones within the same
// transition; applying the list to an already-consistent state is a no-op.
var implicationRules = []struct {
	name  string
	apply func(*transitionState)
}{
	{"waive-forces-instrumented-pet-peese", func(s *transitionState) {
		if s.next.ModelType != ModelWAIVE {
			return
		}
		s.next.ShouldUseInstrumenting = true
		s.next.MaiveMethod = MethodPETPEESE
		s.next.UseLogFirstStage = true
	}},
	{"wls-disables-instrumenting", func(s *transitionState) {
		if s.next.ModelType != ModelWLS {
			return
		}
		s.next.ShouldUseInstrumenting = false
		if s.prev.ModelType != ModelWLS {
			// Entering WLS: remember the instrumented weight for the way
			// back, then switch to the user's override or standard weights.
			before := s.prev.Weight
			s.mem.WeightBeforeWLS = &before
			if s.mem.WeightOverride != nil && *s.mem.WeightOverride != WeightAdjusted {
				s.next.Weight = *s.mem.WeightOverride
			} else {
				s.next.Weight = WeightStandard
			}
		}
	}},
	{"maive-restores-instrumenting", func(s *transitionState) {
		if s.edit.Field != FieldModelType || s.next.ModelType == ModelWLS || s.next.ModelType == ModelWAIVE {
			return
		}
		s.next.ShouldUseInstrumenting = true
		if s.prev.ModelType == ModelWLS && s.mem.WeightBeforeWLS != nil {
			s.next.Weight = *s.mem.WeightBeforeWLS
		}
	}},
	{"adjusted-weights-need-instrumenting", func(s *transitionState) {
		if !s.next.ShouldUseInstrumenting && s.next.Weight == WeightAdjusted {
			s.next.Weight = WeightStandard
		}
	}},
	{"anderson-rubin-visibility", func(s *transitionState) {
		visible := AndersonRubinVisible(*s.next)
		if !visible {
			if s.next.ComputeAndersonRubin && s.mem.AndersonRubinChoice == nil {
				remembered := true
				s.mem.AndersonRubinChoice = &remembered
			}
			s.next.ComputeAndersonRubin = false
			return
		}
		wasVisible := AndersonRubinVisible(s.prev)
		if !wasVisible && s.edit.Field != FieldComputeAndersonRubin && s.mem.AndersonRubinChoice != nil {
			s.next.ComputeAndersonRubin = *s.mem.AndersonRubinChoice
		}
	}},
	{"clustering-follows-se-treatment", func(s *transitionState) {
		if !s.env.HasStudyID {
			return
		}
		s.next.IncludeStudyClustering = s.next.StandardErrorTreatment != SENotClustered
	}},
}

// Transition applies a single user edit to the previous parameter set and
// returns the next consistent set plus the updated memory. Deterministic and
// idempotent: repeating the same edit yields the same result, and applying it
// to an already-consistent state changes nothing.
func Transition(prev ModelParameters, edit Edit, memory Memory, env Context) (ModelParameters, Memory) {
	next := applyEdit(prev, edit)
	mem := memory

	// Direct edits update the remembered-choice memory before rules run.
	switch edit.Field {
	case FieldComputeAndersonRubin:
		if AndersonRubinVisible(prev) {
			choice := next.ComputeAndersonRubin
			mem.AndersonRubinChoice = &choice
		}
	case FieldWeight:
		chosen := next.Weight
		mem.WeightOverride = &chosen
	}

	state := transitionState{prev: prev, next: &next, mem: &mem, edit: edit, env: env}
	for _, rule := range implicationRules {
		rule.apply(&state)
	}

	return next, mem
}

// applyEdit writes the edited value into a copy of the parameter record.
// Values may arrive as their enum types or as raw JSON strings/bools from the
// HTTP boundary; unknown fields leave the record untouched.
func applyEdit(p ModelParameters, edit Edit) ModelParameters {
	switch edit.Field {
	case FieldModelType:
		p.ModelType = ModelType(asString(edit.Value))
	case FieldIncludeStudyDummies:
		p.IncludeStudyDummies = asBool(edit.Value)
	case FieldIncludeStudyClustering:
		p.IncludeStudyClustering = asBool(edit.Value)
	case FieldStandardErrorTreatment:
		p.StandardErrorTreatment = SETreatment(asString(edit.Value))
	case FieldComputeAndersonRubin:
		p.ComputeAndersonRubin = asBool(edit.Value)
	case FieldMaiveMethod:
		p.MaiveMethod = MaiveMethod(asString(edit.Value))
	case FieldWeight:
		p.Weight = Weight(asString(edit.Value))
	case FieldShouldUseInstrumenting:
		p.ShouldUseInstrumenting = asBool(edit.Value)
	case FieldUseLogFirstStage:
		p.UseLogFirstStage = asBool(edit.Value)
	case FieldWinsorize:
		p.Winsorize = asFloat(edit.Value)
	}
	return p
}

func asString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case ModelType:
		return string(value)
	case Weight:
		return string(value)
	case MaiveMethod:
		return string(value)
	case SETreatment:
		return string(value)
	default:
		return ""
	}
}

func asBool(v any) bool {
	value, _ := v.(bool)
	return value
}

func asFloat(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	default:
		return 0
	}
}
