// Package seed fills an empty database with fake but plausible clinic data
// for local development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/encounter"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/inventory"
	"github.com/clinic/clinic/internal/platform/db"
)

var (
	specialties = []string{"Cardiology", "Neurology", "Orthopedics", "Pediatrics", "General Medicine"}
	medications = []string{"Paracetamol", "Ibuprofen", "Amoxicillin", "Metformin", "Aspirin"}
	symptoms    = []string{"Persistent dry cough", "Fever and chills", "Lower back pain", "Recurring headaches", "Shortness of breath", "Joint stiffness"}
	diagnoses   = []string{"Upper respiratory infection", "Seasonal influenza", "Lumbar strain", "Tension headache", "Mild asthma", "Osteoarthritis"}
)

// Counts sets how many rows of each kind are generated.
type Counts struct {
	Patients  int
	Doctors   int
	Inventory int
}

func DefaultCounts() Counts {
	return Counts{Patients: 10, Doctors: 5, Inventory: 5}
}

// Validate rejects negative counts and patients without any doctor to
// assess them.
func (c Counts) Validate() error {
	if c.Patients < 0 || c.Doctors < 0 || c.Inventory < 0 {
		return fmt.Errorf("seed counts must not be negative: patients=%d doctors=%d inventory=%d",
			c.Patients, c.Doctors, c.Inventory)
	}
	if c.Patients > 0 && c.Doctors == 0 {
		return errors.New("at least one doctor is required to seed patients")
	}
	return nil
}

// Truncater empties every clinic table.
type Truncater interface {
	Truncate(ctx context.Context) error
}

type DoctorCreator interface {
	CreateDoctor(ctx context.Context, in identity.DoctorInput) (*identity.Doctor, error)
}

type EncounterCreator interface {
	CreatePatientWithEncounter(ctx context.Context, in encounter.Input) (*encounter.Encounter, error)
}

type Stocker interface {
	Stock(ctx context.Context, item *inventory.Item) error
}

type Seeder struct {
	tx         db.Transactor
	tables     Truncater
	doctors    DoctorCreator
	encounters EncounterCreator
	stock      Stocker
	faker      *gofakeit.Faker
	password   string
	counts     Counts
	used       map[string]bool
}

// New returns a Seeder. seed 0 picks a random seed; any other value makes
// the generated data reproducible. Every account gets password.
func New(tx db.Transactor, tables Truncater, doctors DoctorCreator, encounters EncounterCreator, stock Stocker, seed uint64, password string, counts Counts) *Seeder {
	return &Seeder{
		tx:         tx,
		tables:     tables,
		doctors:    doctors,
		encounters: encounters,
		stock:      stock,
		faker:      gofakeit.New(seed),
		password:   password,
		counts:     counts,
		used:       make(map[string]bool),
	}
}

// Run clears the tables and writes doctors, inventory lots and one
// patient encounter per patient, all in one transaction.
func (s *Seeder) Run(ctx context.Context) error {
	if s.password == "" {
		return errors.New("seed password is required")
	}
	if err := s.counts.Validate(); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.tables.Truncate(ctx); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}

		doctors := make([]*identity.Doctor, 0, s.counts.Doctors)
		for i := 0; i < s.counts.Doctors; i++ {
			d, err := s.createDoctor(ctx)
			if err != nil {
				return err
			}
			doctors = append(doctors, d)
		}

		for i := 0; i < s.counts.Inventory; i++ {
			if err := s.stock.Stock(ctx, s.fakeLot()); err != nil {
				return fmt.Errorf("seed inventory: %w", err)
			}
		}

		for i := 0; i < s.counts.Patients; i++ {
			doctor := doctors[s.faker.Number(0, len(doctors)-1)]
			if err := s.createEncounter(ctx, doctor.ID); err != nil {
				return err
			}
		}

		zerolog.Ctx(ctx).Info().
			Int("patients", s.counts.Patients).
			Int("doctors", s.counts.Doctors).
			Int("inventory", s.counts.Inventory).
			Msg("database seeded")
		return nil
	})
}

func (s *Seeder) createDoctor(ctx context.Context) (*identity.Doctor, error) {
	d, err := s.doctors.CreateDoctor(ctx, identity.DoctorInput{
		FullName:  "Dr. " + s.faker.Name(),
		Specialty: s.faker.RandomString(specialties),
		Phone:     s.unique(s.faker.Phone),
		Email:     s.unique(s.faker.Email),
		Password:  s.password,
	})
	if err != nil {
		return nil, fmt.Errorf("seed doctor: %w", err)
	}
	return d, nil
}

func (s *Seeder) createEncounter(ctx context.Context, doctorID int64) error {
	_, err := s.encounters.CreatePatientWithEncounter(ctx, encounter.Input{
		Patient: identity.PatientInput{
			FullName: s.faker.Name(),
			Age:      s.faker.Number(1, 90),
			Gender:   s.faker.RandomString([]string{"Male", "Female"}),
			Phone:    s.unique(s.faker.Phone),
			Address:  fmt.Sprintf("%s, %s, %s %s", s.faker.Street(), s.faker.City(), s.faker.State(), s.faker.Zip()),
			Password: s.password,
		},
		DoctorID:     doctorID,
		Symptoms:     s.faker.RandomString(symptoms),
		Diagnosis:    s.faker.RandomString(diagnoses),
		Medication:   s.faker.RandomString(medications),
		Dosage:       fmt.Sprintf("%d pills per day", s.faker.Number(1, 3)),
		Instructions: fmt.Sprintf("Take after meals for %d days", s.faker.Number(3, 14)),
	})
	if err != nil {
		return fmt.Errorf("seed encounter: %w", err)
	}
	return nil
}

// unique draws from gen until it yields a value not used earlier in this
// run. A unique violation would abort the surrounding transaction, so
// collisions are avoided up front instead of retried.
func (s *Seeder) unique(gen func() string) string {
	for {
		v := gen()
		if !s.used[v] {
			s.used[v] = true
			return v
		}
	}
}

func (s *Seeder) fakeLot() *inventory.Item {
	supplier := s.faker.Company()
	return &inventory.Item{
		DrugName: s.faker.RandomString(medications),
		Quantity: s.faker.Number(10, 500),
		Supplier: &supplier,
	}
}
