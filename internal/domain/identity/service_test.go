package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

type mockRepo struct {
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockRepo(), []byte("test-secret"), time.Hour)
}

func TestRegister(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), "jdoe", "Jane Doe", auth.RoleDoctor, "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != auth.RoleDoctor {
		t.Errorf("wrong role: %s", u.Role)
	}
	if u.PasswordHash == "s3cret" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), "jdoe", "Jane", "janitor", "pw"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), "jdoe", "Jane", auth.RoleDoctor, "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), "jdoe", "Other Jane", auth.RoleAdmin, "pw2")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestRegisterAdmin(t *testing.T) {
	svc := newTestService()

	u, err := svc.RegisterAdmin(context.Background(), "root", "Root", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != auth.RoleAdmin {
		t.Errorf("expected admin role, got %s", u.Role)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), "jdoe", "Jane", auth.RolePharmacist, "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, u, err := svc.Login(context.Background(), "jdoe", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	claims, err := auth.ParseToken([]byte("test-secret"), token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Username != "jdoe" || claims.Role != auth.RolePharmacist {
		t.Errorf("wrong claims: %s / %s", claims.Username, claims.Role)
	}
	if claims.Subject != u.ID.String() {
		t.Errorf("wrong subject: %s", claims.Subject)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), "jdoe", "Jane", auth.RoleDoctor, "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "jdoe", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Login(context.Background(), "ghost", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGetName(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), "jdoe", "Jane Doe", auth.RoleDoctor, "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name, err := svc.GetName(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Jane Doe" {
		t.Errorf("wrong name: %s", name)
	}
}
