package encounter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/platform/db"
)

var (
	// ErrDoctorNotFound matches identity.ErrNotFound under errors.Is.
	ErrDoctorNotFound = fmt.Errorf("doctor %w", identity.ErrNotFound)
	// ErrAlreadyPrescribed is returned when an assessment already has a prescription.
	ErrAlreadyPrescribed = errors.New("assessment already has a prescription")
)

// Registry is the part of the identity service an encounter needs.
type Registry interface {
	GetDoctor(ctx context.Context, id int64) (*identity.Doctor, error)
	CreatePatient(ctx context.Context, in identity.PatientInput) (*identity.Patient, error)
	FindPatientByName(ctx context.Context, fullName string) (*identity.Patient, error)
}

type Service struct {
	tx            db.Transactor
	registry      Registry
	assessments   AssessmentRepository
	prescriptions PrescriptionRepository
}

func NewService(tx db.Transactor, registry Registry, assessments AssessmentRepository, prescriptions PrescriptionRepository) *Service {
	return &Service{tx: tx, registry: registry, assessments: assessments, prescriptions: prescriptions}
}

// CreatePatientWithEncounter registers a patient together with an assessment
// and its prescription. Either all three rows are written or none is.
func (s *Service) CreatePatientWithEncounter(ctx context.Context, in Input) (*Encounter, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	var out Encounter
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.registry.GetDoctor(ctx, in.DoctorID); err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				return ErrDoctorNotFound
			}
			return fmt.Errorf("lookup doctor: %w", err)
		}

		p, err := s.registry.CreatePatient(ctx, in.Patient)
		if err != nil {
			return err
		}

		a := &Assessment{
			PatientID: p.ID,
			DoctorID:  in.DoctorID,
			Symptoms:  in.Symptoms,
			Diagnosis: in.Diagnosis,
		}
		if err := s.assessments.Create(ctx, a); err != nil {
			return err
		}

		rx := &Prescription{
			PatientID:    p.ID,
			AssessmentID: a.ID,
			Medication:   in.Medication,
			Dosage:       in.Dosage,
			Instructions: in.Instructions,
		}
		if err := s.prescriptions.Create(ctx, rx); err != nil {
			return err
		}

		out = Encounter{Patient: p, Assessment: a, Prescription: rx}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("patient_id", out.Patient.ID).
		Int64("doctor_id", in.DoctorID).
		Int64("assessment_id", out.Assessment.ID).
		Int64("prescription_id", out.Prescription.ID).
		Msg("encounter recorded")
	return &out, nil
}

func validate(in Input) error {
	required := []struct{ field, value string }{
		{"symptoms", in.Symptoms},
		{"diagnosis", in.Diagnosis},
		{"medication", in.Medication},
		{"dosage", in.Dosage},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", identity.ErrInvalidInput, r.field)
		}
	}
	if in.DoctorID <= 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (s *Service) DoctorAssessments(ctx context.Context, doctorID int64) ([]*Assessment, error) {
	return s.assessments.ListByDoctor(ctx, doctorID)
}

// PatientAssessments lists the assessments of the first patient named
// fullName. An unknown name yields an empty list.
func (s *Service) PatientAssessments(ctx context.Context, fullName string) ([]*Assessment, error) {
	p, err := s.registry.FindPatientByName(ctx, fullName)
	if errors.Is(err, identity.ErrNotFound) {
		return []*Assessment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("patient assessments: %w", err)
	}
	return s.assessments.ListByPatient(ctx, p.ID)
}

func (s *Service) ListAssessments(ctx context.Context) ([]*Assessment, error) {
	return s.assessments.List(ctx)
}

func (s *Service) ListPrescriptions(ctx context.Context) ([]*Prescription, error) {
	return s.prescriptions.List(ctx)
}

// -- Relations --

func (s *Service) GetAssessment(ctx context.Context, id int64) (*Assessment, error) {
	return s.assessments.GetByID(ctx, id)
}

func (s *Service) AssessmentsOfPatient(ctx context.Context, patientID int64) ([]*Assessment, error) {
	return s.assessments.ListByPatient(ctx, patientID)
}

func (s *Service) PrescriptionsOfPatient(ctx context.Context, patientID int64) ([]*Prescription, error) {
	return s.prescriptions.ListByPatient(ctx, patientID)
}

// PrescriptionOfAssessment reports identity.ErrNotFound when none was written.
func (s *Service) PrescriptionOfAssessment(ctx context.Context, assessmentID int64) (*Prescription, error) {
	return s.prescriptions.GetByAssessment(ctx, assessmentID)
}
