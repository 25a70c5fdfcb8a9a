package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	DateOfBirth string    `db:"date_of_birth" json:"date_of_birth"`
	AddedAt     time.Time `db:"added_at" json:"added_at"`
}
