package identity

import (
	"errors"
	"fmt"

	"github.com/clinic/clinic/internal/platform/auth"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidInput      = errors.New("invalid input")
)

// ConflictError names the login identity that collided. It matches
// ErrConflict under errors.Is.
type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

var (
	errPatientPhoneTaken = &ConflictError{Entity: "patient", Field: "phone number"}
	errDoctorPhoneTaken  = &ConflictError{Entity: "doctor", Field: "phone number"}
	errDoctorEmailTaken  = &ConflictError{Entity: "doctor", Field: "email"}
)

// conflictByConstraint maps unique constraint names from the schema to the
// identity they protect.
var conflictByConstraint = map[string]*ConflictError{
	"patients_phone_key": errPatientPhoneTaken,
	"doctors_phone_key":  errDoctorPhoneTaken,
	"doctors_email_key":  errDoctorEmailTaken,
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
}

func secretTooLong() error {
	return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, auth.MaxSecretBytes)
}
