package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/patient"
)

type Service struct {
	appointments Repository
	patients     patient.Repository
}

func NewService(appointments Repository, patients patient.Repository) *Service {
	return &Service{appointments: appointments, patients: patients}
}

// Book creates an appointment for an existing patient. The booking principal
// is recorded so reception staff can list their own bookings.
func (s *Service) Book(ctx context.Context, a *Appointment, bookedBy uuid.UUID) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.AppointmentDate.IsZero() {
		return fmt.Errorf("appointment_date is required")
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}

	if _, err := s.patients.GetByID(ctx, a.PatientID); err != nil {
		return err
	}

	a.BookedBy = bookedBy
	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) ListByBookedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByBookedBy(ctx, userID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

// PerDay returns the dashboard aggregation of appointment counts by calendar day.
func (s *Service) PerDay(ctx context.Context) ([]*DayCount, error) {
	return s.appointments.CountPerDay(ctx)
}
