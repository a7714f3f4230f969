package identity

import "context"

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByPhone(ctx context.Context, phone string) (*Patient, error)
	// FindByFullName returns the lowest-id patient with that exact name.
	FindByFullName(ctx context.Context, fullName string) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	GetByPhone(ctx context.Context, phone string) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	FindByFullName(ctx context.Context, fullName string) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
}
