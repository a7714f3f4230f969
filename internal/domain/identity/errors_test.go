package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinic/clinic/migrations"
)

func TestMapWriteErr(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name         string
		err          error
		want         error
		wantConflict *ConflictError
	}{
		{"patient phone", &pgconn.PgError{Code: "23505", ConstraintName: "patients_phone_key"}, ErrConflict, errPatientPhoneTaken},
		{"doctor phone", &pgconn.PgError{Code: "23505", ConstraintName: "doctors_phone_key"}, ErrConflict, errDoctorPhoneTaken},
		{"doctor email", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "doctors_email_key"}), ErrConflict, errDoctorEmailTaken},
		{"unknown unique", &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}, ErrConflict, nil},
		{"value too long", &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(20)"}, ErrInvalidInput, nil},
		{"other failure", boom, boom, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWriteErr("patient create", tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if tt.wantConflict != nil {
				var ce *ConflictError
				if !errors.As(got, &ce) || ce != tt.wantConflict {
					t.Errorf("expected %v, got %v", tt.wantConflict, got)
				}
			}
		})
	}
}

func TestMapWriteErr_TooLongMessage(t *testing.T) {
	got := mapWriteErr("patient create", &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(10)"})
	if got.Error() != "invalid input: value too long for type character varying(10)" {
		t.Errorf("unexpected message %q", got.Error())
	}
}

// Every constraint the repositories translate must exist in the schema.
func TestConflictConstraintsExistInSchema(t *testing.T) {
	schema, err := fs.ReadFile(migrations.FS, "001_clinic.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	for name := range conflictByConstraint {
		if !strings.Contains(string(schema), "CONSTRAINT "+name+" UNIQUE") {
			t.Errorf("constraint %s not declared UNIQUE in 001_clinic.sql", name)
		}
	}
}

func TestMapReadErr(t *testing.T) {
	if err := mapReadErr("patient", pgx.ErrNoRows); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	boom := errors.New("boom")
	if err := mapReadErr("patient", boom); !errors.Is(err, boom) || errors.Is(err, ErrNotFound) {
		t.Errorf("expected wrapped storage error, got %v", err)
	}
}

func TestConflictError_Message(t *testing.T) {
	if got := errPatientPhoneTaken.Error(); got != "patient with this phone number already exists" {
		t.Errorf("unexpected message %q", got)
	}
}
