package encounter

import "context"

type AssessmentRepository interface {
	Create(ctx context.Context, a *Assessment) error
	GetByID(ctx context.Context, id int64) (*Assessment, error)
	List(ctx context.Context) ([]*Assessment, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*Assessment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Assessment, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, rx *Prescription) error
	// GetByAssessment returns identity.ErrNotFound when the assessment has
	// no prescription.
	GetByAssessment(ctx context.Context, assessmentID int64) (*Prescription, error)
	List(ctx context.Context) ([]*Prescription, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Prescription, error)
}
