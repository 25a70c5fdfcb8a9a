package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const cols = `id, patient_id, phone_number, amount, account_reference,
	merchant_request_id, checkout_request_id, status, result_code, result_desc,
	receipt_number, initiated_by, created_at, resolved_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.PatientID, &t.PhoneNumber, &t.Amount, &t.AccountReference,
		&t.MerchantRequestID, &t.CheckoutRequestID, &t.Status, &t.ResultCode, &t.ResultDesc,
		&t.ReceiptNumber, &t.InitiatedBy, &t.CreatedAt, &t.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO payment_transaction
			(id, patient_id, phone_number, amount, account_reference,
			 merchant_request_id, checkout_request_id, status, initiated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		t.ID, t.PatientID, t.PhoneNumber, t.Amount, t.AccountReference,
		t.MerchantRequestID, t.CheckoutRequestID, t.Status, t.InitiatedBy).Scan(&t.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return scanTransaction(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM payment_transaction WHERE id = $1`, id))
}

func (r *repoPG) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*Transaction, error) {
	return scanTransaction(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM payment_transaction WHERE checkout_request_id = $1`, checkoutRequestID))
}

// Resolve updates the row only while it is still pending, so the first
// callback wins and replays cannot mutate a settled transaction.
func (r *repoPG) Resolve(ctx context.Context, checkoutRequestID string, res Resolution) (*Transaction, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE payment_transaction
		SET status = $2,
			result_code = $3,
			result_desc = $4,
			amount = CASE WHEN $2 = 'SUCCEEDED' THEN $5 ELSE amount END,
			receipt_number = CASE WHEN $2 = 'SUCCEEDED' THEN $6 ELSE receipt_number END,
			phone_number = CASE WHEN $2 = 'SUCCEEDED' AND $7 <> '' THEN $7 ELSE phone_number END,
			resolved_at = $8
		WHERE checkout_request_id = $1 AND status = 'PENDING'
		RETURNING `+cols,
		checkoutRequestID, res.Status, res.ResultCode, res.ResultDesc,
		res.Amount, res.ReceiptNumber, res.PhoneNumber, res.ResolvedAt)

	t, err := scanTransaction(row)
	if errors.Is(err, ErrNotFound) {
		// No pending row matched. Distinguish an unknown checkout id
		// from a replayed callback.
		if _, getErr := r.GetByCheckoutRequestID(ctx, checkoutRequestID); getErr == nil {
			return nil, ErrAlreadyResolved
		}
		return nil, ErrNotFound
	}
	return t, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_transaction WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM payment_transaction WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

// TotalPaid sums successful payments for a patient. COALESCE keeps the
// result zero rather than NULL when no payments exist.
func (r *repoPG) TotalPaid(ctx context.Context, patientID uuid.UUID) (float64, error) {
	var total float64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_transaction
		WHERE patient_id = $1 AND status = 'SUCCEEDED'`, patientID).Scan(&total)
	return total, err
}

// TotalPaidAll sums successful payments across all patients, the figure the
// admin dashboard reports as total revenue collected.
func (r *repoPG) TotalPaidAll(ctx context.Context) (float64, error) {
	var total float64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_transaction
		WHERE status = 'SUCCEEDED'`).Scan(&total)
	return total, err
}
