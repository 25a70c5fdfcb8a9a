package medicalrecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/patient"
)

type mockRepo struct {
	records       map[uuid.UUID]*MedicalRecord
	prescriptions map[uuid.UUID][]*RecordPrescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		records:       make(map[uuid.UUID]*MedicalRecord),
		prescriptions: make(map[uuid.UUID][]*RecordPrescription),
	}
}

func (m *mockRepo) Create(_ context.Context, r *MedicalRecord) error {
	r.ID = uuid.New()
	r.DiagnosisDate = time.Now()
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var result []*MedicalRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByPatientWithPrescriptions(_ context.Context, patientID uuid.UUID) ([]*RecordWithPrescriptions, error) {
	var result []*RecordWithPrescriptions
	for _, r := range m.records {
		if r.PatientID == patientID {
			result = append(result, &RecordWithPrescriptions{
				MedicalRecord: *r,
				Prescriptions: m.prescriptions[r.ID],
			})
		}
	}
	return result, nil
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*patient.Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *patient.Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) GetByNameAndPhone(_ context.Context, name, phone string) (*patient.Patient, error) {
	return nil, patient.ErrNotFound
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo, *patient.Patient) {
	t.Helper()
	repo := newMockRepo()
	patRepo := newMockPatientRepo()
	p := &patient.Patient{Name: "Jane Doe", PhoneNumber: "254700000000"}
	if err := patRepo.Create(context.Background(), p); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return NewService(repo, patRepo), repo, p
}

func TestAdd(t *testing.T) {
	svc, _, p := newTestService(t)
	doctor := uuid.New()

	r := &MedicalRecord{PatientID: p.ID, Symptoms: "fever, headache"}
	if err := svc.Add(context.Background(), r, doctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.AddedBy != doctor {
		t.Error("recording clinician not stamped")
	}
	if r.DiagnosisDate.IsZero() {
		t.Error("diagnosis date not set")
	}
}

func TestAdd_UnknownPatient(t *testing.T) {
	svc, _, _ := newTestService(t)

	r := &MedicalRecord{PatientID: uuid.New(), Symptoms: "fever"}
	err := svc.Add(context.Background(), r, uuid.New())
	if !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected patient.ErrNotFound, got %v", err)
	}
}

func TestAdd_MissingSymptoms(t *testing.T) {
	svc, _, p := newTestService(t)

	r := &MedicalRecord{PatientID: p.ID}
	if err := svc.Add(context.Background(), r, uuid.New()); err == nil {
		t.Error("expected error for missing symptoms")
	}
}

func TestListWithPrescriptions(t *testing.T) {
	svc, repo, p := newTestService(t)

	r := &MedicalRecord{PatientID: p.ID, Symptoms: "cough"}
	if err := svc.Add(context.Background(), r, uuid.New()); err != nil {
		t.Fatalf("add: %v", err)
	}
	repo.prescriptions[r.ID] = []*RecordPrescription{
		{ID: uuid.New(), Medication: "Amoxicillin", Dosage: "500mg x3 daily", PrescribedBy: uuid.New()},
	}

	got, err := svc.ListWithPrescriptions(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if len(got[0].Prescriptions) != 1 || got[0].Prescriptions[0].Medication != "Amoxicillin" {
		t.Error("prescriptions not joined to record")
	}
}

func TestListWithPrescriptions_UnknownPatient(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ListWithPrescriptions(context.Background(), uuid.New())
	if !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected patient.ErrNotFound, got %v", err)
	}
}
