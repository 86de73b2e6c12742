package clinical

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/reporting/internal/platform/db"
	"github.com/ehr/reporting/internal/platform/query"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the clinical record tables.
func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func (s *pgStore) GetConcept(ctx context.Context, id int) (*Concept, error) {
	var c Concept
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT concept_id, uuid, name, retired FROM concept WHERE concept_id = $1`, id).
		Scan(&c.ID, &c.UUID, &c.Name, &c.Retired)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *pgStore) GetEncounterType(ctx context.Context, id int) (*EncounterType, error) {
	var et EncounterType
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT encounter_type_id, uuid, name, retired FROM encounter_type WHERE encounter_type_id = $1`, id).
		Scan(&et.ID, &et.UUID, &et.Name, &et.Retired)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &et, nil
}

func (s *pgStore) GetLocation(ctx context.Context, id int) (*Location, error) {
	var l Location
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT location_id, uuid, name, retired FROM location WHERE location_id = $1`, id).
		Scan(&l.ID, &l.UUID, &l.Name, &l.Retired)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *pgStore) FindObs(ctx context.Context, q ObsQuery) ([]Obs, error) {
	b := query.New("obs",
		"obs_id, uuid, patient_id, concept_id, encounter_id, location_id, obs_datetime, value_coded, voided")
	b.Eq("concept_id", q.ConceptID)
	b.Eq("voided", false)
	if q.OnOrAfter != nil {
		b.Ge("obs_datetime", *q.OnOrAfter)
	}
	if q.OnOrBefore != nil {
		b.Le("obs_datetime", *q.OnOrBefore)
	}
	locIDs := make([]interface{}, len(q.LocationIDs))
	for i, id := range q.LocationIDs {
		locIDs[i] = id
	}
	b.In("location_id", locIDs...)
	b.OrderBy("patient_id, obs_datetime, obs_id")

	rows, err := s.conn(ctx).Query(ctx, b.SelectSQL(), b.SelectArgs()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Obs
	for rows.Next() {
		var o Obs
		if err := rows.Scan(&o.ID, &o.UUID, &o.PatientID, &o.ConceptID,
			&o.EncounterID, &o.LocationID, &o.ObsDatetime, &o.ValueCodedID, &o.Voided); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (s *pgStore) FindEncountersWithObs(ctx context.Context, q EncounterObsQuery) ([]EncounterObs, error) {
	b := query.New("encounter e JOIN obs o ON o.encounter_id = e.encounter_id",
		"e.patient_id, e.encounter_id, o.obs_id, o.value_coded")
	b.Eq("o.concept_id", q.ConceptID)
	b.Eq("e.voided", false)
	b.Eq("o.voided", false)
	typeIDs := make([]interface{}, len(q.EncounterTypeIDs))
	for i, id := range q.EncounterTypeIDs {
		typeIDs[i] = id
	}
	b.In("e.encounter_type_id", typeIDs...)
	b.OrderBy("e.patient_id, e.encounter_id, o.obs_id")

	rows, err := s.conn(ctx).Query(ctx, b.SelectSQL(), b.SelectArgs()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EncounterObs
	for rows.Next() {
		var eo EncounterObs
		if err := rows.Scan(&eo.PatientID, &eo.EncounterID, &eo.ObsID, &eo.ValueCodedID); err != nil {
			return nil, err
		}
		result = append(result, eo)
	}
	return result, rows.Err()
}
