package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription maps to the prescription table. PatientID is copied from the
// medical record at write time so pharmacists can filter without a join.
// PrescribedBy is the id of the clinician who wrote it.
type Prescription struct {
	ID              uuid.UUID `db:"id" json:"id"`
	MedicalRecordID uuid.UUID `db:"medical_record_id" json:"medical_record_id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	Medication      string    `db:"medication" json:"medication"`
	Dosage          string    `db:"dosage" json:"dosage"`
	PrescribedBy    uuid.UUID `db:"prescribed_by" json:"prescribed_by"`
	PrescribedAt    time.Time `db:"prescribed_at" json:"prescribed_at"`
}
