// Package clinical provides read access to the clinical record: concepts,
// locations, encounter types, encounters and observations. The reporting
// engine treats this store as an external collaborator and only ever reads
// from it.
package clinical

import "time"

// Concept is a controlled-vocabulary entry. Coded observations answer a
// question concept with a value concept.
type Concept struct {
	ID      int    `db:"concept_id" json:"id"`
	UUID    string `db:"uuid" json:"uuid"`
	Name    string `db:"name" json:"name"`
	Retired bool   `db:"retired" json:"retired"`
}

// EncounterType classifies encounters (e.g. initial visit, lab, discharge).
type EncounterType struct {
	ID      int    `db:"encounter_type_id" json:"id"`
	UUID    string `db:"uuid" json:"uuid"`
	Name    string `db:"name" json:"name"`
	Retired bool   `db:"retired" json:"retired"`
}

// Location is a care site where encounters and observations are recorded.
type Location struct {
	ID      int    `db:"location_id" json:"id"`
	UUID    string `db:"uuid" json:"uuid"`
	Name    string `db:"name" json:"name"`
	Retired bool   `db:"retired" json:"retired"`
}

// Encounter is a single patient visit of a given type.
type Encounter struct {
	ID                int       `db:"encounter_id" json:"id"`
	UUID              string    `db:"uuid" json:"uuid"`
	PatientID         int       `db:"patient_id" json:"patient_id"`
	EncounterTypeID   int       `db:"encounter_type_id" json:"encounter_type_id"`
	LocationID        *int      `db:"location_id" json:"location_id,omitempty"`
	EncounterDatetime time.Time `db:"encounter_datetime" json:"encounter_datetime"`
	Voided            bool      `db:"voided" json:"voided"`
}

// Obs is a recorded observation. ConceptID is the question; ValueCodedID is
// the coded answer, nil when the question was recorded without a coded value.
type Obs struct {
	ID           int       `db:"obs_id" json:"id"`
	UUID         string    `db:"uuid" json:"uuid"`
	PatientID    int       `db:"patient_id" json:"patient_id"`
	ConceptID    int       `db:"concept_id" json:"concept_id"`
	EncounterID  *int      `db:"encounter_id" json:"encounter_id,omitempty"`
	LocationID   *int      `db:"location_id" json:"location_id,omitempty"`
	ObsDatetime  time.Time `db:"obs_datetime" json:"obs_datetime"`
	ValueCodedID *int      `db:"value_coded" json:"value_coded,omitempty"`
	Voided       bool      `db:"voided" json:"voided"`
}
