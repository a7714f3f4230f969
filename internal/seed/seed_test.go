package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/clinic/clinic/internal/domain/encounter"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/inventory"
)

type passthroughTx struct{ calls int }

func (t *passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type recorder struct {
	truncated  int
	doctors    []identity.DoctorInput
	encounters []encounter.Input
	lots       []*inventory.Item
	failStock  error
}

func (r *recorder) Truncate(context.Context) error {
	r.truncated++
	return nil
}

func (r *recorder) CreateDoctor(_ context.Context, in identity.DoctorInput) (*identity.Doctor, error) {
	r.doctors = append(r.doctors, in)
	return &identity.Doctor{ID: int64(len(r.doctors)) + 100, FullName: in.FullName}, nil
}

func (r *recorder) CreatePatientWithEncounter(_ context.Context, in encounter.Input) (*encounter.Encounter, error) {
	if r.truncated == 0 {
		return nil, errors.New("encounter written before truncate")
	}
	r.encounters = append(r.encounters, in)
	return &encounter.Encounter{}, nil
}

func (r *recorder) Stock(_ context.Context, item *inventory.Item) error {
	if r.failStock != nil {
		return r.failStock
	}
	r.lots = append(r.lots, item)
	return nil
}

func newTestSeeder(r *recorder, tx *passthroughTx, seed uint64) *Seeder {
	return New(tx, r, r, r, r, seed, "changeme", DefaultCounts())
}

func TestRun_DefaultCounts(t *testing.T) {
	r := &recorder{}
	tx := &passthroughTx{}

	if err := newTestSeeder(r, tx, 42).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.calls != 1 {
		t.Errorf("expected one transaction, got %d", tx.calls)
	}
	if r.truncated != 1 {
		t.Errorf("expected tables truncated once, got %d", r.truncated)
	}
	if len(r.doctors) != 5 || len(r.encounters) != 10 || len(r.lots) != 5 {
		t.Fatalf("expected 5/10/5, got %d/%d/%d", len(r.doctors), len(r.encounters), len(r.lots))
	}

	for _, in := range r.encounters {
		if in.DoctorID < 101 || in.DoctorID > 105 {
			t.Errorf("encounter references unknown doctor %d", in.DoctorID)
		}
		if in.Patient.Password != "changeme" {
			t.Errorf("expected seed password, got %q", in.Patient.Password)
		}
		if in.Patient.Age < 1 || in.Patient.Age > 90 {
			t.Errorf("age out of range: %d", in.Patient.Age)
		}
	}
	for _, lot := range r.lots {
		if lot.Quantity < 10 || lot.Quantity > 500 || lot.Supplier == nil {
			t.Errorf("unexpected lot %+v", lot)
		}
	}
}

func TestRun_PhonesAreUnique(t *testing.T) {
	r := &recorder{}
	if err := newTestSeeder(r, &passthroughTx{}, 7).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{}
	for _, in := range r.encounters {
		if seen[in.Patient.Phone] {
			t.Errorf("duplicate patient phone %s", in.Patient.Phone)
		}
		seen[in.Patient.Phone] = true
	}
}

func TestRun_Reproducible(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	if err := newTestSeeder(a, &passthroughTx{}, 99).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := newTestSeeder(b, &passthroughTx{}, 99).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	for i := range a.encounters {
		if a.encounters[i].Patient.FullName != b.encounters[i].Patient.FullName {
			t.Fatalf("run %d differs: %q vs %q", i, a.encounters[i].Patient.FullName, b.encounters[i].Patient.FullName)
		}
	}
}

func TestRun_PropagatesFailure(t *testing.T) {
	boom := errors.New("disk full")
	r := &recorder{failStock: boom}

	err := newTestSeeder(r, &passthroughTx{}, 1).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected stock failure, got %v", err)
	}
	if len(r.encounters) != 0 {
		t.Error("expected no encounters after failure")
	}
}

func TestRun_Validation(t *testing.T) {
	r := &recorder{}
	s := New(&passthroughTx{}, r, r, r, r, 1, "", DefaultCounts())
	if err := s.Run(context.Background()); err == nil {
		t.Error("expected error for empty password")
	}

	s = New(&passthroughTx{}, r, r, r, r, 1, "pw", Counts{Patients: 1})
	if err := s.Run(context.Background()); err == nil {
		t.Error("expected error when patients have no doctor")
	}
	if r.truncated != 0 {
		t.Error("expected nothing cleared on invalid configuration")
	}
}

func TestRun_NegativeCounts(t *testing.T) {
	tests := []struct {
		name   string
		counts Counts
	}{
		{"doctors", Counts{Patients: 0, Doctors: -1, Inventory: 0}},
		{"patients", Counts{Patients: -3, Doctors: 1, Inventory: 0}},
		{"inventory", Counts{Patients: 0, Doctors: 1, Inventory: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			tx := &passthroughTx{}
			if err := New(tx, r, r, r, r, 1, "pw", tt.counts).Run(context.Background()); err == nil {
				t.Fatal("expected error for negative count")
			}
			if tx.calls != 0 || r.truncated != 0 {
				t.Error("expected no transaction and nothing cleared")
			}
		})
	}
}
