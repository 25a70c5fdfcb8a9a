package medicalrecord

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

const cols = `id, patient_id, symptoms, diagnosis_date, added_by`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.PatientID, &m.Symptoms, &m.DiagnosisDate, &m.AddedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *MedicalRecord) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_record (id, patient_id, symptoms, added_by)
		VALUES ($1, $2, $3, $4)
		RETURNING diagnosis_date`,
		m.ID, m.PatientID, m.Symptoms, m.AddedBy).Scan(&m.DiagnosisDate)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM medical_record WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM medical_record WHERE patient_id = $1 ORDER BY diagnosis_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatientWithPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*RecordWithPrescriptions, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT mr.id, mr.patient_id, mr.symptoms, mr.diagnosis_date, mr.added_by,
		       p.id, p.medication, p.dosage, p.prescribed_by
		FROM medical_record mr
		LEFT JOIN prescription p ON p.medical_record_id = mr.id
		WHERE mr.patient_id = $1
		ORDER BY mr.diagnosis_date DESC, p.id`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*RecordWithPrescriptions
	byID := make(map[uuid.UUID]*RecordWithPrescriptions)
	for rows.Next() {
		var m MedicalRecord
		var pID *uuid.UUID
		var medication, dosage *string
		var prescribedBy *uuid.UUID
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Symptoms, &m.DiagnosisDate, &m.AddedBy,
			&pID, &medication, &dosage, &prescribedBy); err != nil {
			return nil, err
		}

		rec, ok := byID[m.ID]
		if !ok {
			rec = &RecordWithPrescriptions{MedicalRecord: m, Prescriptions: []*RecordPrescription{}}
			byID[m.ID] = rec
			result = append(result, rec)
		}
		if pID != nil {
			rec.Prescriptions = append(rec.Prescriptions, &RecordPrescription{
				ID:           *pID,
				Medication:   *medication,
				Dosage:       *dosage,
				PrescribedBy: *prescribedBy,
			})
		}
	}
	return result, rows.Err()
}
