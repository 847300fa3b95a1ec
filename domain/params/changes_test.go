package params

import (
	"strings"
	"testing"
)

func changeFor(changes []Change, field Field) *Change {
	for i := range changes {
		if changes[i].Field == field {
			return &changes[i]
		}
	}
	return nil
}

func TestTrackChanges_ExcludesEditedField(t *testing.T) {
	prev := Defaults()
	next, _ := Transition(prev, SetModelType(ModelWLS), Memory{}, Context{})

	changes := TrackChanges(prev, next, FieldModelType)

	if changeFor(changes, FieldModelType) != nil {
		t.Error("the edited field must not appear in the change list")
	}
	if c := changeFor(changes, FieldShouldUseInstrumenting); c == nil {
		t.Error("instrumenting change should be reported")
	} else {
		if c.OldValue != true || c.NewValue != false {
			t.Errorf("unexpected old/new: %v -> %v", c.OldValue, c.NewValue)
		}
		if !strings.Contains(c.Message, "WLS does not use instrumenting") {
			t.Errorf("unexpected message: %s", c.Message)
		}
	}
	if c := changeFor(changes, FieldWeight); c == nil {
		t.Error("weight change should be reported")
	} else if !strings.Contains(c.Message, "standard weights") {
		t.Errorf("unexpected message: %s", c.Message)
	}
}

func TestTrackChanges_WAIVECascade(t *testing.T) {
	prev := Defaults()
	prev.MaiveMethod = MethodPET
	prev.ShouldUseInstrumenting = false

	next, _ := Transition(prev, SetModelType(ModelWAIVE), Memory{}, Context{})
	changes := TrackChanges(prev, next, FieldModelType)

	if c := changeFor(changes, FieldMaiveMethod); c == nil || !strings.Contains(c.Message, "PET-PEESE") {
		t.Errorf("expected a PET-PEESE explanation, got %+v", c)
	}
	if c := changeFor(changes, FieldUseLogFirstStage); c == nil || !strings.Contains(c.Message, "logarithms") {
		t.Errorf("expected a log-first-stage explanation, got %+v", c)
	}
	if c := changeFor(changes, FieldShouldUseInstrumenting); c == nil || !strings.Contains(c.Message, "requires instrumenting") {
		t.Errorf("expected an instrumenting explanation, got %+v", c)
	}
}

func TestTrackChanges_AndersonRubinDisabledByWeight(t *testing.T) {
	prev := Defaults()
	prev.ComputeAndersonRubin = true

	next, _ := Transition(prev, SetWeight(WeightAdjusted), Memory{}, Context{})
	changes := TrackChanges(prev, next, FieldWeight)

	c := changeFor(changes, FieldComputeAndersonRubin)
	if c == nil || !strings.Contains(c.Message, "requires equal weights") {
		t.Errorf("expected an equal-weights explanation, got %+v", c)
	}
}

func TestTrackChanges_AndersonRubinDisabledByStudyDummies(t *testing.T) {
	prev := Defaults()
	prev.ComputeAndersonRubin = true

	next, mem := Transition(prev, SetStudyDummies(true), Memory{}, Context{})
	changes := TrackChanges(prev, next, FieldIncludeStudyDummies)

	c := changeFor(changes, FieldComputeAndersonRubin)
	if c == nil || !strings.Contains(c.Message, "unavailable with study dummies") {
		t.Errorf("expected a study-dummies explanation, got %+v", c)
	}

	// Turning the dummies back off reports the restore.
	restored, _ := Transition(next, SetStudyDummies(false), mem, Context{})
	changes = TrackChanges(next, restored, FieldIncludeStudyDummies)
	c = changeFor(changes, FieldComputeAndersonRubin)
	if c == nil || !strings.Contains(c.Message, "was restored") {
		t.Errorf("expected a restore explanation, got %+v", c)
	}
}

func TestTrackChanges_FallbackMessage(t *testing.T) {
	prev := Defaults()
	next := prev
	next.Winsorize = 5

	changes := TrackChanges(prev, next, FieldModelType)
	c := changeFor(changes, FieldWinsorize)
	if c == nil || c.Message != "winsorize was set to 5." {
		t.Errorf("expected the generic fallback message, got %+v", c)
	}
}

func TestTrackChanges_NoSideEffectsNoChanges(t *testing.T) {
	prev := Defaults()
	next, _ := Transition(prev, SetStudyDummies(true), Memory{}, Context{})

	if changes := TrackChanges(prev, next, FieldIncludeStudyDummies); len(changes) != 0 {
		t.Errorf("a side-effect-free edit must report no changes, got %+v", changes)
	}
}
