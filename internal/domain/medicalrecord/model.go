package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_record table.
type MedicalRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	Symptoms      string    `db:"symptoms" json:"symptoms"`
	DiagnosisDate time.Time `db:"diagnosis_date" json:"diagnosis_date"`
	AddedBy       uuid.UUID `db:"added_by" json:"added_by"`
}

// RecordPrescription is the prescription projection used by the composite
// records-with-prescriptions read. The prescription domain owns the full
// entity; this view exists so the read can be served with one join.
type RecordPrescription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Medication   string    `db:"medication" json:"medication"`
	Dosage       string    `db:"dosage" json:"dosage"`
	PrescribedBy uuid.UUID `db:"prescribed_by" json:"prescribed_by"`
}

// RecordWithPrescriptions pairs a medical record with its prescriptions.
type RecordWithPrescriptions struct {
	MedicalRecord
	Prescriptions []*RecordPrescription `json:"prescriptions"`
}
