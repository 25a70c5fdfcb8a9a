package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrAlreadyResolved = errors.New("transaction already resolved")
)

// Resolution carries the callback outcome applied to a pending transaction.
// On success Amount, ReceiptNumber and PhoneNumber overwrite the row with
// the gateway-confirmed values.
type Resolution struct {
	Status        string
	ResultCode    int
	ResultDesc    string
	Amount        float64
	ReceiptNumber string
	PhoneNumber   string
	ResolvedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*Transaction, error)
	// Resolve applies res to the pending transaction with the given
	// checkout request id. Returns ErrAlreadyResolved when the row exists
	// but is no longer pending, ErrNotFound when no row matches.
	Resolve(ctx context.Context, checkoutRequestID string, res Resolution) (*Transaction, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transaction, int, error)
	TotalPaid(ctx context.Context, patientID uuid.UUID) (float64, error)
	TotalPaidAll(ctx context.Context) (float64, error)
}
