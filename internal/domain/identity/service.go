package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinic/clinic/internal/platform/auth"
)

// KindNone is reported by Exists when neither table holds the name.
const KindNone auth.UserKind = "NotFound"

// Hasher hashes and verifies login secrets.
type Hasher interface {
	Hash(secret string) (string, error)
	Check(hash, secret string) bool
}

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
}

// LoginResult is returned by a successful Authenticate.
type LoginResult struct {
	Token    string
	UserID   int64
	FullName string
	UserType auth.UserKind
}

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
	hasher   Hasher
	tokens   TokenIssuer
}

func NewService(patients PatientRepository, doctors DoctorRepository, hasher Hasher, tokens TokenIssuer) *Service {
	return &Service{patients: patients, doctors: doctors, hasher: hasher, tokens: tokens}
}

// -- Patient --

// Register creates a patient whose phone is not yet registered. A retry
// after success reports ErrConflict.
func (s *Service) Register(ctx context.Context, in PatientInput) (*Patient, error) {
	if err := validatePatient(in); err != nil {
		return nil, err
	}
	_, err := s.patients.GetByPhone(ctx, strings.TrimSpace(in.Phone))
	switch {
	case err == nil:
		return nil, errPatientPhoneTaken
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("register patient: %w", err)
	}
	return s.CreatePatient(ctx, in)
}

// CreatePatient inserts a patient without the phone pre-check. A duplicate
// phone still fails with ErrConflict from the unique constraint.
func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	if err := validatePatient(in); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	p := &Patient{
		FullName:     strings.TrimSpace(in.FullName),
		Age:          in.Age,
		Gender:       strings.TrimSpace(in.Gender),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      optionalString(strings.TrimSpace(in.Address)),
		PasswordHash: hash,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) FindPatientByName(ctx context.Context, fullName string) (*Patient, error) {
	return s.patients.FindByFullName(ctx, fullName)
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

func validatePatient(in PatientInput) error {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return invalid("full_name")
	case strings.TrimSpace(in.Gender) == "":
		return invalid("gender")
	case strings.TrimSpace(in.Phone) == "":
		return invalid("phone")
	case in.Password == "":
		return invalid("password")
	case len(in.Password) > auth.MaxSecretBytes:
		return secretTooLong()
	case in.Age < 0:
		return fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}
	return nil
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, in DoctorInput) (*Doctor, error) {
	d := &Doctor{
		FullName:  strings.TrimSpace(in.FullName),
		Specialty: strings.TrimSpace(in.Specialty),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
	}
	switch {
	case d.FullName == "":
		return nil, invalid("full_name")
	case d.Specialty == "":
		return nil, invalid("specialty")
	case d.Phone == "":
		return nil, invalid("phone")
	case d.Email == "":
		return nil, invalid("email")
	case in.Password == "":
		return nil, invalid("password")
	case len(in.Password) > auth.MaxSecretBytes:
		return nil, secretTooLong()
	}

	if _, err := s.doctors.GetByPhone(ctx, d.Phone); err == nil {
		return nil, errDoctorPhoneTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	if _, err := s.doctors.GetByEmail(ctx, d.Email); err == nil {
		return nil, errDoctorEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("create doctor: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	d.PasswordHash = hash
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.List(ctx)
}

// -- Authentication --

// Authenticate resolves fullName against patients, then doctors, and checks
// secret against the first match only.
func (s *Service) Authenticate(ctx context.Context, fullName, secret string) (*LoginResult, error) {
	principal, hash, err := s.lookupLogin(ctx, fullName)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Check(hash, secret) {
		return nil, ErrInvalidCredential
	}

	token, err := s.tokens.Issue(*principal)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return &LoginResult{
		Token:    token,
		UserID:   principal.UserID,
		FullName: principal.FullName,
		UserType: principal.UserType,
	}, nil
}

func (s *Service) lookupLogin(ctx context.Context, fullName string) (*auth.Principal, string, error) {
	p, err := s.patients.FindByFullName(ctx, fullName)
	if err == nil {
		return &auth.Principal{UserID: p.ID, UserType: auth.KindPatient, FullName: p.FullName}, p.PasswordHash, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("authenticate: %w", err)
	}

	d, err := s.doctors.FindByFullName(ctx, fullName)
	if err == nil {
		return &auth.Principal{UserID: d.ID, UserType: auth.KindDoctor, FullName: d.FullName}, d.PasswordHash, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("authenticate: %w", err)
	}
	return nil, "", ErrNotFound
}

// Exists reports which table holds fullName. Doctors are checked first.
func (s *Service) Exists(ctx context.Context, fullName string) (auth.UserKind, error) {
	if _, err := s.doctors.FindByFullName(ctx, fullName); err == nil {
		return auth.KindDoctor, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("user exists: %w", err)
	}
	if _, err := s.patients.FindByFullName(ctx, fullName); err == nil {
		return auth.KindPatient, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("user exists: %w", err)
	}
	return KindNone, nil
}
