package identity

import "time"

// Patient maps to the patients table.
type Patient struct {
	ID             int64     `db:"id" json:"id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Age            int       `db:"age" json:"age"`
	Gender         string    `db:"gender" json:"gender"`
	Phone          string    `db:"phone" json:"phone"`
	Address        *string   `db:"address" json:"address,omitempty"`
	DateRegistered time.Time `db:"date_registered" json:"date_registered"`
	PasswordHash   string    `db:"password_hash" json:"-"`
}

// Doctor maps to the doctors table.
type Doctor struct {
	ID           int64  `db:"id" json:"id"`
	FullName     string `db:"full_name" json:"full_name"`
	Specialty    string `db:"specialty" json:"specialty"`
	Phone        string `db:"phone" json:"phone"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
}

// PatientInput carries the fields a caller supplies to register a patient.
type PatientInput struct {
	FullName string
	Age      int
	Gender   string
	Phone    string
	Address  string
	Password string
}

type DoctorInput struct {
	FullName  string
	Specialty string
	Phone     string
	Email     string
	Password  string
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
