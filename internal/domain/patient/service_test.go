package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.AddedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByNameAndPhone(_ context.Context, name, phone string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Name == name && p.PhoneNumber == phone {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{Name: "Jane Doe", PhoneNumber: "254700000000", DateOfBirth: "1990-05-01"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("id not assigned")
	}

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Jane Doe" {
		t.Errorf("wrong name: %s", got.Name)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.Create(context.Background(), &Patient{PhoneNumber: "254700000000"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Create(context.Background(), &Patient{Name: "Jane"}); err == nil {
		t.Error("expected error for missing phone number")
	}
}

func TestCreate_Duplicate(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{Name: "Jane Doe", PhoneNumber: "254700000000"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := &Patient{Name: "Jane Doe", PhoneNumber: "254700000000"}
	if err := svc.Create(context.Background(), dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
