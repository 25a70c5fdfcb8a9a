package medicalrecord

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/patient"
)

type Service struct {
	records  Repository
	patients patient.Repository
}

func NewService(records Repository, patients patient.Repository) *Service {
	return &Service{records: records, patients: patients}
}

// Add files a medical record for an existing patient, attributed to the
// clinician who recorded it.
func (s *Service) Add(ctx context.Context, m *MedicalRecord, addedBy uuid.UUID) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if m.Symptoms == "" {
		return fmt.Errorf("symptoms is required")
	}

	if _, err := s.patients.GetByID(ctx, m.PatientID); err != nil {
		return err
	}

	m.AddedBy = addedBy
	return s.records.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

// ListWithPrescriptions returns a patient's records joined with their
// prescriptions for the composite chart view.
func (s *Service) ListWithPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*RecordWithPrescriptions, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.records.ListByPatientWithPrescriptions(ctx, patientID)
}
