package prescription

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/medicalrecord"
)

type Service struct {
	prescriptions Repository
	records       medicalrecord.Repository
}

func NewService(prescriptions Repository, records medicalrecord.Repository) *Service {
	return &Service{prescriptions: prescriptions, records: records}
}

// Prescribe attaches a prescription to an existing medical record.
func (s *Service) Prescribe(ctx context.Context, p *Prescription, prescribedBy uuid.UUID) error {
	if p.MedicalRecordID == uuid.Nil {
		return fmt.Errorf("medical_record_id is required")
	}
	if p.Medication == "" {
		return fmt.Errorf("medication is required")
	}
	if p.Dosage == "" {
		return fmt.Errorf("dosage is required")
	}

	rec, err := s.records.GetByID(ctx, p.MedicalRecordID)
	if err != nil {
		return err
	}

	p.PatientID = rec.PatientID
	p.PrescribedBy = prescribedBy
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) ListByMedicalRecord(ctx context.Context, recordID uuid.UUID) ([]*Prescription, error) {
	if _, err := s.records.GetByID(ctx, recordID); err != nil {
		return nil, err
	}
	return s.prescriptions.ListByMedicalRecord(ctx, recordID)
}

// List returns all prescriptions newest first, used by pharmacists to work
// the dispensing queue.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.List(ctx, limit, offset)
}
