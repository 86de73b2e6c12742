package clinical

import (
	"context"
	"time"
)

// ObsQuery narrows observations for one question concept. Nil bounds and an
// empty location list mean "no filter". Voided observations are never
// returned.
type ObsQuery struct {
	ConceptID   int
	OnOrAfter   *time.Time
	OnOrBefore  *time.Time
	LocationIDs []int
}

// EncounterObsQuery selects encounters of the given types that contain at
// least one observation for the given question concept.
type EncounterObsQuery struct {
	EncounterTypeIDs []int
	ConceptID        int
}

// EncounterObs is one (encounter, observation) pairing returned by
// FindEncountersWithObs. An encounter with several matching observations
// yields several rows.
type EncounterObs struct {
	PatientID    int
	EncounterID  int
	ObsID        int
	ValueCodedID *int
}

// Store is the read-only clinical record access API.
//
// Lookups by id return (nil, nil) when the entity does not exist; errors are
// reserved for store failures. FindObs returns observations ordered by
// patient id, then observation datetime, then obs id, so callers can pick a
// patient's chronologically first or last observation with a stable
// tie-break.
type Store interface {
	GetConcept(ctx context.Context, id int) (*Concept, error)
	GetEncounterType(ctx context.Context, id int) (*EncounterType, error)
	GetLocation(ctx context.Context, id int) (*Location, error)
	FindObs(ctx context.Context, q ObsQuery) ([]Obs, error)
	FindEncountersWithObs(ctx context.Context, q EncounterObsQuery) ([]EncounterObs, error)
}
