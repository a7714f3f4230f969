package encounter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/platform/db"
)

// -- Assessment Repository --

type assessmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAssessmentRepo(pool *pgxpool.Pool) AssessmentRepository {
	return &assessmentRepoPG{pool: pool}
}

func (r *assessmentRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const assessmentCols = `id, patient_id, doctor_id, symptoms, diagnosis, date`

func (r *assessmentRepoPG) Create(ctx context.Context, a *Assessment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO assessments (patient_id, doctor_id, symptoms, diagnosis)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date`,
		a.PatientID, a.DoctorID, a.Symptoms, a.Diagnosis,
	).Scan(&a.ID, &a.Date)
	if err != nil {
		return mapAssessmentWriteErr(err)
	}
	return nil
}

func (r *assessmentRepoPG) GetByID(ctx context.Context, id int64) (*Assessment, error) {
	a, err := scanAssessment(r.conn(ctx).QueryRow(ctx, `SELECT `+assessmentCols+` FROM assessments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("assessment %d: %w", id, identity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("assessment get: %w", err)
	}
	return a, nil
}

func (r *assessmentRepoPG) List(ctx context.Context) ([]*Assessment, error) {
	return r.query(ctx, `SELECT `+assessmentCols+` FROM assessments ORDER BY id`)
}

func (r *assessmentRepoPG) ListByDoctor(ctx context.Context, doctorID int64) ([]*Assessment, error) {
	return r.query(ctx, `SELECT `+assessmentCols+` FROM assessments WHERE doctor_id = $1 ORDER BY id`, doctorID)
}

func (r *assessmentRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Assessment, error) {
	return r.query(ctx, `SELECT `+assessmentCols+` FROM assessments WHERE patient_id = $1 ORDER BY id`, patientID)
}

func (r *assessmentRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Assessment, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("assessment list: %w", err)
	}
	defer rows.Close()

	out := []*Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("assessment list: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	if err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Symptoms, &a.Diagnosis, &a.Date); err != nil {
		return nil, err
	}
	return &a, nil
}

// -- Prescription Repository --

type prescriptionRepoPG struct {
	pool *pgxpool.Pool
}

func NewPrescriptionRepo(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const prescriptionCols = `id, patient_id, assessment_id, medication, dosage, instructions, date_prescribed`

func (r *prescriptionRepoPG) Create(ctx context.Context, rx *Prescription) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriptions (patient_id, assessment_id, medication, dosage, instructions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, date_prescribed`,
		rx.PatientID, rx.AssessmentID, rx.Medication, rx.Dosage, rx.Instructions,
	).Scan(&rx.ID, &rx.DatePrescribed)
	if err != nil {
		return mapPrescriptionWriteErr(err)
	}
	return nil
}

func (r *prescriptionRepoPG) GetByAssessment(ctx context.Context, assessmentID int64) (*Prescription, error) {
	rx, err := scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE assessment_id = $1`, assessmentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prescription for assessment %d: %w", assessmentID, identity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("prescription get: %w", err)
	}
	return rx, nil
}

func (r *prescriptionRepoPG) List(ctx context.Context) ([]*Prescription, error) {
	return r.query(ctx, `SELECT `+prescriptionCols+` FROM prescriptions ORDER BY id`)
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Prescription, error) {
	return r.query(ctx, `SELECT `+prescriptionCols+` FROM prescriptions WHERE patient_id = $1 ORDER BY id`, patientID)
}

func (r *prescriptionRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("prescription list: %w", err)
	}
	defer rows.Close()

	out := []*Prescription{}
	for rows.Next() {
		rx, err := scanPrescription(rows)
		if err != nil {
			return nil, fmt.Errorf("prescription list: %w", err)
		}
		out = append(out, rx)
	}
	return out, rows.Err()
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var rx Prescription
	if err := row.Scan(&rx.ID, &rx.PatientID, &rx.AssessmentID, &rx.Medication, &rx.Dosage, &rx.Instructions, &rx.DatePrescribed); err != nil {
		return nil, err
	}
	return &rx, nil
}

const (
	constraintAssessmentDoctor   = "fk_assessments_doctor_id_doctors"
	constraintPrescriptionUnique = "prescriptions_assessment_id_key"
)

func mapAssessmentWriteErr(err error) error {
	if constraint, ok := db.ForeignKeyViolation(err); ok && constraint == constraintAssessmentDoctor {
		return ErrDoctorNotFound
	}
	return fmt.Errorf("assessment create: %w", err)
}

func mapPrescriptionWriteErr(err error) error {
	if constraint, ok := db.UniqueViolation(err); ok && constraint == constraintPrescriptionUnique {
		return fmt.Errorf("prescription create: %w", ErrAlreadyPrescribed)
	}
	if msg, ok := db.StringTooLong(err); ok {
		return fmt.Errorf("%w: %s", identity.ErrInvalidInput, msg)
	}
	return fmt.Errorf("prescription create: %w", err)
}
