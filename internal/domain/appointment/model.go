package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCanceled  = "CANCELED"
	StatusClosed    = "CLOSED"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusConfirmed: true, StatusCanceled: true, StatusClosed: true,
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	Status          string    `db:"status" json:"status"`
	BookedBy        uuid.UUID `db:"booked_by" json:"booked_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// DayCount is one row of the appointments-per-day dashboard aggregation.
type DayCount struct {
	Day   time.Time `db:"day" json:"day"`
	Count int       `db:"count" json:"count"`
}
