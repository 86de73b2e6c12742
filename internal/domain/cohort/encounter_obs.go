package cohort

import (
	"context"

	"github.com/ehr/reporting/internal/domain/clinical"
)

// EncounterWithCodedObsEvaluator evaluates EncounterWithCodedObsDefinition
// against the clinical store.
type EncounterWithCodedObsEvaluator struct {
	store clinical.Store
}

// NewEncounterWithCodedObsEvaluator returns an evaluator backed by the
// given store.
func NewEncounterWithCodedObsEvaluator(store clinical.Store) *EncounterWithCodedObsEvaluator {
	return &EncounterWithCodedObsEvaluator{store: store}
}

func (e *EncounterWithCodedObsEvaluator) Evaluate(ctx context.Context, def Definition, ec *EvaluationContext) (*EvaluatedCohort, error) {
	d, ok := def.(*EncounterWithCodedObsDefinition)
	if !ok {
		return nil, NewConfigurationError("expected encounter-with-coded-obs definition, got %q", def.Type())
	}
	if d.ConceptID == 0 {
		return nil, NewConfigurationError("encounter-with-coded-obs definition requires a concept")
	}
	if len(d.IncludeCodedValueIDs) > 0 && len(d.ExcludeCodedValueIDs) > 0 {
		return nil, NewConfigurationError("include and exclude coded values are mutually exclusive")
	}
	if err := e.resolve(ctx, d); err != nil {
		return nil, err
	}

	rows, err := e.store.FindEncountersWithObs(ctx, clinical.EncounterObsQuery{
		EncounterTypeIDs: d.EncounterTypeIDs,
		ConceptID:        d.ConceptID,
	})
	if err != nil {
		return nil, err
	}

	include := make(map[int]struct{}, len(d.IncludeCodedValueIDs))
	for _, id := range d.IncludeCodedValueIDs {
		include[id] = struct{}{}
	}
	exclude := make(map[int]struct{}, len(d.ExcludeCodedValueIDs))
	for _, id := range d.ExcludeCodedValueIDs {
		exclude[id] = struct{}{}
	}

	matches := func(valueCoded *int) bool {
		switch {
		case len(include) > 0:
			if valueCoded == nil {
				return d.IncludeNoObsValue
			}
			_, in := include[*valueCoded]
			return in
		case len(exclude) > 0:
			if valueCoded == nil {
				return d.IncludeNoObsValue
			}
			_, out := exclude[*valueCoded]
			return !out
		case d.IncludeNoObsValue:
			return valueCoded == nil
		default:
			return true
		}
	}

	var members []int
	seen := make(map[int]struct{})
	for _, row := range rows {
		if _, done := seen[row.PatientID]; done {
			continue
		}
		if matches(row.ValueCodedID) {
			seen[row.PatientID] = struct{}{}
			members = append(members, row.PatientID)
		}
	}
	return NewEvaluatedCohort(members, d, ec), nil
}

func (e *EncounterWithCodedObsEvaluator) resolve(ctx context.Context, d *EncounterWithCodedObsDefinition) error {
	c, err := e.store.GetConcept(ctx, d.ConceptID)
	if err != nil {
		return err
	}
	if c == nil {
		return &EvaluationError{Kind: "concept", ID: d.ConceptID}
	}
	for _, id := range d.EncounterTypeIDs {
		et, err := e.store.GetEncounterType(ctx, id)
		if err != nil {
			return err
		}
		if et == nil {
			return &EvaluationError{Kind: "encounter type", ID: id}
		}
	}
	for _, id := range append(append([]int{}, d.IncludeCodedValueIDs...), d.ExcludeCodedValueIDs...) {
		v, err := e.store.GetConcept(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return &EvaluationError{Kind: "concept", ID: id}
		}
	}
	return nil
}
