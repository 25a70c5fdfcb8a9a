package payments

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Transaction maps to the payment_transaction table. A row exists only for
// STK pushes the gateway accepted; CheckoutRequestID correlates the later
// callback with the row.
type Transaction struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	PhoneNumber       string     `db:"phone_number" json:"phone_number"`
	Amount            float64    `db:"amount" json:"amount"`
	AccountReference  string     `db:"account_reference" json:"account_reference"`
	MerchantRequestID string     `db:"merchant_request_id" json:"merchant_request_id"`
	CheckoutRequestID string     `db:"checkout_request_id" json:"checkout_request_id"`
	Status            string     `db:"status" json:"status"`
	ResultCode        *int       `db:"result_code" json:"result_code,omitempty"`
	ResultDesc        string     `db:"result_desc" json:"result_desc,omitempty"`
	ReceiptNumber     string     `db:"receipt_number" json:"receipt_number,omitempty"`
	InitiatedBy       uuid.UUID  `db:"initiated_by" json:"initiated_by"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt        *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// Resolved reports whether a callback has settled this transaction.
func (t *Transaction) Resolved() bool { return t.Status != StatusPending }
