package cohort

import (
	"context"
	"errors"
	"testing"
)

func evalEncounterObs(t *testing.T, d *EncounterWithCodedObsDefinition) *EvaluatedCohort {
	t.Helper()
	ev := NewEncounterWithCodedObsEvaluator(seedStore())
	cohort, err := ev.Evaluate(context.Background(), d, &EvaluationContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cohort
}

func TestEncounterObs_IncludeCodedValue(t *testing.T) {
	cohort := evalEncounterObs(t, &EncounterWithCodedObsDefinition{
		EncounterTypeIDs:     []int{2},
		ConceptID:            21,
		IncludeCodedValueIDs: []int{8},
	})
	if !equalMembers(cohort.Members(), 7) {
		t.Errorf("expected {7}, got %v", cohort.Members())
	}
}

func TestEncounterObs_ExcludeCodedValue(t *testing.T) {
	cohort := evalEncounterObs(t, &EncounterWithCodedObsDefinition{
		EncounterTypeIDs:     []int{1},
		ConceptID:            21,
		ExcludeCodedValueIDs: []int{8},
	})
	if !equalMembers(cohort.Members(), 7) {
		t.Errorf("expected {7}, got %v", cohort.Members())
	}
}

func TestEncounterObs_IncludeNoObsValue(t *testing.T) {
	cohort := evalEncounterObs(t, &EncounterWithCodedObsDefinition{
		EncounterTypeIDs:  []int{6},
		ConceptID:         21,
		IncludeNoObsValue: true,
	})
	if !equalMembers(cohort.Members(), 20, 21, 22, 23, 24) {
		t.Errorf("expected {20..24}, got %v", cohort.Members())
	}
}

func TestEncounterObs_NoValueFiltersMatchesAllEncounters(t *testing.T) {
	cohort := evalEncounterObs(t, &EncounterWithCodedObsDefinition{
		ConceptID: 21,
	})
	if !equalMembers(cohort.Members(), 7, 8, 20, 21, 22, 23, 24) {
		t.Errorf("expected every patient with an encounter obs, got %v", cohort.Members())
	}
}

func TestEncounterObs_ExcludeTreatsNullAsNonMatch(t *testing.T) {
	// Patients 20..24 only have valueless observations. A plain exclusion
	// does not admit them; setting IncludeNoObsValue does.
	cohort := evalEncounterObs(t, &EncounterWithCodedObsDefinition{
		EncounterTypeIDs:     []int{6},
		ConceptID:            21,
		ExcludeCodedValueIDs: []int{8},
	})
	if cohort.Size() != 0 {
		t.Fatalf("expected empty cohort, got %v", cohort.Members())
	}

	cohort = evalEncounterObs(t, &EncounterWithCodedObsDefinition{
		EncounterTypeIDs:     []int{6},
		ConceptID:            21,
		ExcludeCodedValueIDs: []int{8},
		IncludeNoObsValue:    true,
	})
	if !equalMembers(cohort.Members(), 20, 21, 22, 23, 24) {
		t.Errorf("expected {20..24}, got %v", cohort.Members())
	}
}

func TestEncounterObs_IncludeAndExcludeRejected(t *testing.T) {
	ev := NewEncounterWithCodedObsEvaluator(seedStore())
	_, err := ev.Evaluate(context.Background(), &EncounterWithCodedObsDefinition{
		EncounterTypeIDs:     []int{1},
		ConceptID:            21,
		IncludeCodedValueIDs: []int{7},
		ExcludeCodedValueIDs: []int{8},
	}, nil)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestEncounterObs_MissingConceptRejected(t *testing.T) {
	ev := NewEncounterWithCodedObsEvaluator(seedStore())
	_, err := ev.Evaluate(context.Background(), &EncounterWithCodedObsDefinition{
		EncounterTypeIDs: []int{1},
	}, nil)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestEncounterObs_UnresolvableEncounterType(t *testing.T) {
	ev := NewEncounterWithCodedObsEvaluator(seedStore())
	_, err := ev.Evaluate(context.Background(), &EncounterWithCodedObsDefinition{
		EncounterTypeIDs: []int{99},
		ConceptID:        21,
	}, nil)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Kind != "encounter type" || evalErr.ID != 99 {
		t.Errorf("expected encounter type 99 in error, got %+v", evalErr)
	}
}
