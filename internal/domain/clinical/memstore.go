package clinical

import (
	"context"
	"sort"
)

// MemStore is an in-memory Store used by tests and local development. It is
// not safe for concurrent mutation; seed it up front, then read freely.
type MemStore struct {
	Concepts       map[int]*Concept
	EncounterTypes map[int]*EncounterType
	Locations      map[int]*Location
	Encounters     map[int]*Encounter
	Observations   map[int]*Obs
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		Concepts:       make(map[int]*Concept),
		EncounterTypes: make(map[int]*EncounterType),
		Locations:      make(map[int]*Location),
		Encounters:     make(map[int]*Encounter),
		Observations:   make(map[int]*Obs),
	}
}

// AddConcept registers a concept under its id.
func (m *MemStore) AddConcept(c Concept) *MemStore {
	m.Concepts[c.ID] = &c
	return m
}

// AddEncounterType registers an encounter type under its id.
func (m *MemStore) AddEncounterType(et EncounterType) *MemStore {
	m.EncounterTypes[et.ID] = &et
	return m
}

// AddLocation registers a location under its id.
func (m *MemStore) AddLocation(l Location) *MemStore {
	m.Locations[l.ID] = &l
	return m
}

// AddEncounter registers an encounter under its id.
func (m *MemStore) AddEncounter(e Encounter) *MemStore {
	m.Encounters[e.ID] = &e
	return m
}

// AddObs registers an observation under its id.
func (m *MemStore) AddObs(o Obs) *MemStore {
	m.Observations[o.ID] = &o
	return m
}

func (m *MemStore) GetConcept(_ context.Context, id int) (*Concept, error) {
	return m.Concepts[id], nil
}

func (m *MemStore) GetEncounterType(_ context.Context, id int) (*EncounterType, error) {
	return m.EncounterTypes[id], nil
}

func (m *MemStore) GetLocation(_ context.Context, id int) (*Location, error) {
	return m.Locations[id], nil
}

func (m *MemStore) FindObs(_ context.Context, q ObsQuery) ([]Obs, error) {
	var result []Obs
	for _, o := range m.Observations {
		if o.Voided || o.ConceptID != q.ConceptID {
			continue
		}
		if q.OnOrAfter != nil && o.ObsDatetime.Before(*q.OnOrAfter) {
			continue
		}
		if q.OnOrBefore != nil && o.ObsDatetime.After(*q.OnOrBefore) {
			continue
		}
		if len(q.LocationIDs) > 0 {
			if o.LocationID == nil || !containsInt(q.LocationIDs, *o.LocationID) {
				continue
			}
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PatientID != result[j].PatientID {
			return result[i].PatientID < result[j].PatientID
		}
		if !result[i].ObsDatetime.Equal(result[j].ObsDatetime) {
			return result[i].ObsDatetime.Before(result[j].ObsDatetime)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *MemStore) FindEncountersWithObs(_ context.Context, q EncounterObsQuery) ([]EncounterObs, error) {
	var result []EncounterObs
	for _, o := range m.Observations {
		if o.Voided || o.ConceptID != q.ConceptID || o.EncounterID == nil {
			continue
		}
		e, ok := m.Encounters[*o.EncounterID]
		if !ok || e.Voided {
			continue
		}
		if len(q.EncounterTypeIDs) > 0 && !containsInt(q.EncounterTypeIDs, e.EncounterTypeID) {
			continue
		}
		result = append(result, EncounterObs{
			PatientID:    e.PatientID,
			EncounterID:  e.ID,
			ObsID:        o.ID,
			ValueCodedID: o.ValueCodedID,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PatientID != result[j].PatientID {
			return result[i].PatientID < result[j].PatientID
		}
		if result[i].EncounterID != result[j].EncounterID {
			return result[i].EncounterID < result[j].EncounterID
		}
		return result[i].ObsID < result[j].ObsID
	})
	return result, nil
}

func containsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
