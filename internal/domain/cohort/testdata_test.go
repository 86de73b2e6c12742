package cohort

import (
	"time"

	"github.com/ehr/reporting/internal/domain/clinical"
)

func intp(v int) *int { return &v }

func aug(day, hour int) time.Time {
	return time.Date(2008, 8, day, hour, 0, 0, 0, time.UTC)
}

// seedStore builds the shared evaluation fixture:
//
//	patient 7  - obs 21=MARRIED(7) in a type-1 encounter at location 1,
//	             then obs 21=SINGLE(8) in a type-2 encounter at location 2,
//	             both on 2008-08-15
//	patient 8  - obs 21=MARRIED(7) then a later obs 21=SINGLE(8) in a
//	             type-1 encounter
//	patient 9  - obs 21=MARRIED(7) outside the 08-14..08-16 window
//	patient 10 - obs 21=MARRIED(7) at location 2
//	20 to 24   - type-6 encounters with obs 21 recorded without a value
func seedStore() *clinical.MemStore {
	m := clinical.NewMemStore().
		AddConcept(clinical.Concept{ID: 21, UUID: "c-21", Name: "CIVIL STATUS"}).
		AddConcept(clinical.Concept{ID: 7, UUID: "c-7", Name: "MARRIED"}).
		AddConcept(clinical.Concept{ID: 8, UUID: "c-8", Name: "SINGLE"}).
		AddLocation(clinical.Location{ID: 1, UUID: "l-1", Name: "Unknown Location"}).
		AddLocation(clinical.Location{ID: 2, UUID: "l-2", Name: "Clinic B"}).
		AddEncounterType(clinical.EncounterType{ID: 1, UUID: "et-1", Name: "ADULTINITIAL"}).
		AddEncounterType(clinical.EncounterType{ID: 2, UUID: "et-2", Name: "ADULTRETURN"}).
		AddEncounterType(clinical.EncounterType{ID: 6, UUID: "et-6", Name: "EMERGENCY"})

	m.AddEncounter(clinical.Encounter{ID: 200, PatientID: 7, EncounterTypeID: 1, LocationID: intp(1), EncounterDatetime: aug(15, 8)}).
		AddEncounter(clinical.Encounter{ID: 201, PatientID: 7, EncounterTypeID: 2, LocationID: intp(1), EncounterDatetime: aug(15, 10)}).
		AddEncounter(clinical.Encounter{ID: 202, PatientID: 8, EncounterTypeID: 1, LocationID: intp(1), EncounterDatetime: aug(10, 9)})

	m.AddObs(clinical.Obs{ID: 300, PatientID: 7, ConceptID: 21, EncounterID: intp(200), LocationID: intp(1), ObsDatetime: aug(15, 8), ValueCodedID: intp(7)}).
		AddObs(clinical.Obs{ID: 301, PatientID: 7, ConceptID: 21, EncounterID: intp(201), LocationID: intp(2), ObsDatetime: aug(15, 10), ValueCodedID: intp(8)}).
		AddObs(clinical.Obs{ID: 302, PatientID: 8, ConceptID: 21, EncounterID: intp(202), LocationID: intp(1), ObsDatetime: aug(10, 9), ValueCodedID: intp(8)}).
		AddObs(clinical.Obs{ID: 303, PatientID: 8, ConceptID: 21, LocationID: intp(1), ObsDatetime: aug(5, 9), ValueCodedID: intp(7)}).
		AddObs(clinical.Obs{ID: 304, PatientID: 9, ConceptID: 21, LocationID: intp(1), ObsDatetime: aug(20, 9), ValueCodedID: intp(7)}).
		AddObs(clinical.Obs{ID: 305, PatientID: 10, ConceptID: 21, LocationID: intp(2), ObsDatetime: aug(15, 9), ValueCodedID: intp(7)})

	for i, patientID := range []int{20, 21, 22, 23, 24} {
		encID := 210 + i
		m.AddEncounter(clinical.Encounter{ID: encID, PatientID: patientID, EncounterTypeID: 6, LocationID: intp(1), EncounterDatetime: aug(18, 9)})
		m.AddObs(clinical.Obs{ID: 310 + i, PatientID: patientID, ConceptID: 21, EncounterID: intp(encID), LocationID: intp(1), ObsDatetime: aug(18, 9)})
	}
	return m
}

func equalMembers(got []int, want ...int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
