package cohort

import (
	"context"

	"github.com/ehr/reporting/internal/domain/clinical"
)

// CodedObsEvaluator evaluates CodedObsDefinition against the clinical store.
type CodedObsEvaluator struct {
	store clinical.Store
}

// NewCodedObsEvaluator returns an evaluator backed by the given store.
func NewCodedObsEvaluator(store clinical.Store) *CodedObsEvaluator {
	return &CodedObsEvaluator{store: store}
}

func (e *CodedObsEvaluator) Evaluate(ctx context.Context, def Definition, ec *EvaluationContext) (*EvaluatedCohort, error) {
	d, ok := def.(*CodedObsDefinition)
	if !ok {
		return nil, NewConfigurationError("expected coded-obs definition, got %q", def.Type())
	}
	if err := e.validate(d); err != nil {
		return nil, err
	}
	if err := e.resolve(ctx, d); err != nil {
		return nil, err
	}

	obs, err := e.store.FindObs(ctx, clinical.ObsQuery{
		ConceptID:   d.QuestionConceptID,
		OnOrAfter:   d.OnOrAfter,
		OnOrBefore:  d.OnOrBefore,
		LocationIDs: d.LocationIDs,
	})
	if err != nil {
		return nil, err
	}

	values := make(map[int]struct{}, len(d.ValueConceptIDs))
	for _, id := range d.ValueConceptIDs {
		values[id] = struct{}{}
	}
	matches := func(o clinical.Obs) bool {
		if len(values) == 0 {
			return true
		}
		if o.ValueCodedID == nil {
			return false
		}
		_, in := values[*o.ValueCodedID]
		if d.Operator == ComparatorNotIn {
			return !in
		}
		return in
	}

	var members []int
	// FindObs groups observations per patient, chronologically. Walk the
	// groups and apply the time modifier to each patient's run.
	for start := 0; start < len(obs); {
		end := start
		for end < len(obs) && obs[end].PatientID == obs[start].PatientID {
			end++
		}
		run := obs[start:end]
		if e.runMatches(d.TimeModifier, run, matches) {
			members = append(members, run[0].PatientID)
		}
		start = end
	}
	return NewEvaluatedCohort(members, d, ec), nil
}

func (e *CodedObsEvaluator) runMatches(tm TimeModifier, run []clinical.Obs, matches func(clinical.Obs) bool) bool {
	switch tm {
	case TimeFirst:
		return matches(run[0])
	case TimeLast:
		return matches(run[len(run)-1])
	case TimeNo:
		for _, o := range run {
			if matches(o) {
				return false
			}
		}
		return true
	default: // TimeAny
		for _, o := range run {
			if matches(o) {
				return true
			}
		}
		return false
	}
}

func (e *CodedObsEvaluator) validate(d *CodedObsDefinition) error {
	if d.QuestionConceptID == 0 {
		return NewConfigurationError("coded-obs definition requires a question concept")
	}
	switch d.TimeModifier {
	case TimeAny, TimeFirst, TimeLast, TimeNo:
	case TimeMin, TimeMax:
		return NewConfigurationError("time modifier %s is not applicable to coded observations", d.TimeModifier)
	default:
		return NewConfigurationError("unsupported time modifier %q", d.TimeModifier)
	}
	switch d.Operator {
	case ComparatorIn, ComparatorNotIn:
	default:
		return NewConfigurationError("unsupported operator %q", d.Operator)
	}
	return nil
}

func (e *CodedObsEvaluator) resolve(ctx context.Context, d *CodedObsDefinition) error {
	c, err := e.store.GetConcept(ctx, d.QuestionConceptID)
	if err != nil {
		return err
	}
	if c == nil {
		return &EvaluationError{Kind: "concept", ID: d.QuestionConceptID}
	}
	for _, id := range d.ValueConceptIDs {
		v, err := e.store.GetConcept(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return &EvaluationError{Kind: "concept", ID: id}
		}
	}
	for _, id := range d.LocationIDs {
		l, err := e.store.GetLocation(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return &EvaluationError{Kind: "location", ID: id}
		}
	}
	return nil
}
