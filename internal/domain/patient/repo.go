package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("patient not found")
	ErrDuplicate = errors.New("patient with these details already exists")
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByNameAndPhone(ctx context.Context, name, phone string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
