package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, full_name, age, gender, phone, address, date_registered, password_hash`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (full_name, age, gender, phone, address, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, date_registered`,
		p.FullName, p.Age, p.Gender, p.Phone, p.Address, p.PasswordHash,
	).Scan(&p.ID, &p.DateRegistered)
	if err != nil {
		return mapWriteErr("patient create", err)
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id)
}

func (r *patientRepoPG) GetByPhone(ctx context.Context, phone string) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patients WHERE phone = $1`, phone)
}

func (r *patientRepoPG) FindByFullName(ctx context.Context, fullName string) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patients WHERE full_name = $1 ORDER BY id LIMIT 1`, fullName)
}

func (r *patientRepoPG) getOne(ctx context.Context, sql string, arg interface{}) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, sql, arg))
	if err != nil {
		return nil, mapReadErr("patient", err)
	}
	return p, nil
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("patient list: %w", err)
	}
	defer rows.Close()

	patients := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("patient list: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.Age, &p.Gender, &p.Phone, &p.Address, &p.DateRegistered, &p.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -- Doctor Repository --

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, full_name, specialty, phone, email, password_hash`

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (full_name, specialty, phone, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.FullName, d.Specialty, d.Phone, d.Email, d.PasswordHash,
	).Scan(&d.ID)
	if err != nil {
		return mapWriteErr("doctor create", err)
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	return r.getOne(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id)
}

func (r *doctorRepoPG) GetByPhone(ctx context.Context, phone string) (*Doctor, error) {
	return r.getOne(ctx, `SELECT `+doctorCols+` FROM doctors WHERE phone = $1`, phone)
}

func (r *doctorRepoPG) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return r.getOne(ctx, `SELECT `+doctorCols+` FROM doctors WHERE email = $1`, email)
}

func (r *doctorRepoPG) FindByFullName(ctx context.Context, fullName string) (*Doctor, error) {
	return r.getOne(ctx, `SELECT `+doctorCols+` FROM doctors WHERE full_name = $1 ORDER BY id LIMIT 1`, fullName)
}

func (r *doctorRepoPG) getOne(ctx context.Context, sql string, arg interface{}) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, sql, arg))
	if err != nil {
		return nil, mapReadErr("doctor", err)
	}
	return d, nil
}

func (r *doctorRepoPG) List(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+doctorCols+` FROM doctors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("doctor list: %w", err)
	}
	defer rows.Close()

	doctors := []*Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("doctor list: %w", err)
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FullName, &d.Specialty, &d.Phone, &d.Email, &d.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func mapReadErr(entity string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return fmt.Errorf("%s get: %w", entity, err)
}

// mapWriteErr translates constraint failures into domain errors; anything
// else is wrapped with op.
func mapWriteErr(op string, err error) error {
	if constraint, ok := db.UniqueViolation(err); ok {
		if ce, known := conflictByConstraint[constraint]; known {
			return ce
		}
		return fmt.Errorf("%w: %s", ErrConflict, constraint)
	}
	if msg, ok := db.StringTooLong(err); ok {
		return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}
