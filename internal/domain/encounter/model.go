package encounter

import (
	"time"

	"github.com/clinic/clinic/internal/domain/identity"
)

// Assessment maps to the assessments table.
type Assessment struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patient_id"`
	DoctorID  int64     `db:"doctor_id" json:"doctor_id"`
	Symptoms  string    `db:"symptoms" json:"symptoms"`
	Diagnosis string    `db:"diagnosis" json:"diagnosis"`
	Date      time.Time `db:"date" json:"date"`
}

// Prescription maps to the prescriptions table. It always belongs to the
// same patient as its assessment.
type Prescription struct {
	ID             int64     `db:"id" json:"id"`
	PatientID      int64     `db:"patient_id" json:"patient_id"`
	AssessmentID   int64     `db:"assessment_id" json:"assessment_id"`
	Medication     string    `db:"medication" json:"medication"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Instructions   string    `db:"instructions" json:"instructions"`
	DatePrescribed time.Time `db:"date_prescribed" json:"date_prescribed"`
}

// Input describes a first visit: a new patient, the attending doctor and
// what was found and prescribed.
type Input struct {
	Patient      identity.PatientInput
	DoctorID     int64
	Symptoms     string
	Diagnosis    string
	Medication   string
	Dosage       string
	Instructions string
}

// Encounter is the set of rows written by one CreatePatientWithEncounter.
type Encounter struct {
	Patient      *identity.Patient
	Assessment   *Assessment
	Prescription *Prescription
}
