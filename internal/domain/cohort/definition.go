// Package cohort evaluates cohort definitions against the clinical record,
// producing immutable sets of patient ids. Definitions are declarative
// queries; evaluators registered by definition type carry the logic.
package cohort

import (
	"sort"
	"time"
)

// TimeModifier says which of a patient's observations the value predicate
// applies to.
type TimeModifier string

const (
	// TimeAny matches if any observation satisfies the predicate.
	TimeAny TimeModifier = "ANY"
	// TimeFirst applies the predicate to the chronologically first observation.
	TimeFirst TimeModifier = "FIRST"
	// TimeLast applies the predicate to the chronologically last observation.
	TimeLast TimeModifier = "LAST"
	// TimeMin and TimeMax rank observations by value and are only meaningful
	// for numeric observations.
	TimeMin TimeModifier = "MIN"
	TimeMax TimeModifier = "MAX"
	// TimeNo matches patients who have the question recorded but no
	// observation satisfying the predicate.
	TimeNo TimeModifier = "NO"
)

// SetComparator relates an observation's coded value to a value list.
type SetComparator string

const (
	ComparatorIn    SetComparator = "IN"
	ComparatorNotIn SetComparator = "NOT_IN"
)

// Definition is a declarative patient query. Type keys evaluator dispatch.
type Definition interface {
	Type() string
}

// CodedObsDefinition selects patients by their coded answers to a question
// concept, optionally narrowed by date window and location.
type CodedObsDefinition struct {
	QuestionConceptID int           `json:"question_concept_id"`
	Operator          SetComparator `json:"operator"`
	ValueConceptIDs   []int         `json:"value_concept_ids,omitempty"`
	TimeModifier      TimeModifier  `json:"time_modifier"`
	OnOrAfter         *time.Time    `json:"on_or_after,omitempty"`
	OnOrBefore        *time.Time    `json:"on_or_before,omitempty"`
	LocationIDs       []int         `json:"location_ids,omitempty"`
}

// TypeCodedObs tags CodedObsDefinition for evaluator dispatch.
const TypeCodedObs = "coded-obs"

func (d *CodedObsDefinition) Type() string { return TypeCodedObs }

// EncounterWithCodedObsDefinition selects patients who had an encounter of
// one of the given types containing an observation for the given concept,
// filtered by the observation's coded value. IncludeCodedValueIDs and
// ExcludeCodedValueIDs are mutually exclusive.
type EncounterWithCodedObsDefinition struct {
	EncounterTypeIDs     []int `json:"encounter_type_ids,omitempty"`
	ConceptID            int   `json:"concept_id"`
	IncludeCodedValueIDs []int `json:"include_coded_value_ids,omitempty"`
	ExcludeCodedValueIDs []int `json:"exclude_coded_value_ids,omitempty"`
	IncludeNoObsValue    bool  `json:"include_no_obs_value"`
}

// TypeEncounterWithCodedObs tags EncounterWithCodedObsDefinition for
// evaluator dispatch.
const TypeEncounterWithCodedObs = "encounter-with-coded-obs"

func (d *EncounterWithCodedObsDefinition) Type() string { return TypeEncounterWithCodedObs }

// EvaluationContext carries cross-cutting evaluation inputs. A non-nil
// BaseCohort restricts every result to its members.
type EvaluationContext struct {
	EvaluationDate time.Time `json:"evaluation_date,omitempty"`
	BaseCohort     []int     `json:"base_cohort,omitempty"`
}

// EvaluatedCohort is the immutable result of evaluating a definition: a
// deduplicated set of patient ids plus non-owning back-references to the
// definition and context that produced it.
type EvaluatedCohort struct {
	members    map[int]struct{}
	Definition Definition
	Context    *EvaluationContext
}

// NewEvaluatedCohort builds a cohort from patient ids, dropping duplicates.
func NewEvaluatedCohort(memberIDs []int, def Definition, ec *EvaluationContext) *EvaluatedCohort {
	members := make(map[int]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}
	return &EvaluatedCohort{members: members, Definition: def, Context: ec}
}

// Contains reports membership of a patient id.
func (c *EvaluatedCohort) Contains(patientID int) bool {
	_, ok := c.members[patientID]
	return ok
}

// Size returns the number of members.
func (c *EvaluatedCohort) Size() int { return len(c.members) }

// Members returns the member ids in ascending order. The slice is a copy.
func (c *EvaluatedCohort) Members() []int {
	ids := make([]int, 0, len(c.members))
	for id := range c.members {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
