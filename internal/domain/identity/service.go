package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/auth"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	users     Repository
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewService(users Repository, jwtSecret []byte, jwtTTL time.Duration) *Service {
	return &Service{users: users, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

func validRole(role string) bool {
	switch role {
	case auth.RoleAdmin, auth.RoleDoctor, auth.RolePharmacist, auth.RoleReceptionist:
		return true
	}
	return false
}

// Register creates a staff account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, name, role, password string) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if !validRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Username: username, Name: name, Role: role, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RegisterAdmin bootstraps an admin account. The handler exposes it without
// authentication so a fresh deployment can create its first user.
func (s *Service) RegisterAdmin(ctx context.Context, username, name, password string) (*User, error) {
	return s.Register(ctx, username, name, auth.RoleAdmin, password)
}

// Login verifies credentials and returns a signed JWT for the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.jwtSecret, s.jwtTTL, u.ID, u.Username, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// GetName resolves a user id to a display name, used by clients rendering
// booked-by and prescribed-by columns.
func (s *Service) GetName(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}
