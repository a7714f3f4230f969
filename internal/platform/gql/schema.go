package gql

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/clinic/clinic/internal/domain/encounter"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/inventory"
	"github.com/clinic/clinic/internal/platform/auth"
)

type IdentityService interface {
	Register(ctx context.Context, in identity.PatientInput) (*identity.Patient, error)
	CreateDoctor(ctx context.Context, in identity.DoctorInput) (*identity.Doctor, error)
	Authenticate(ctx context.Context, fullName, secret string) (*identity.LoginResult, error)
	Exists(ctx context.Context, fullName string) (auth.UserKind, error)
	ListPatients(ctx context.Context) ([]*identity.Patient, error)
	ListDoctors(ctx context.Context) ([]*identity.Doctor, error)
	GetPatient(ctx context.Context, id int64) (*identity.Patient, error)
	GetDoctor(ctx context.Context, id int64) (*identity.Doctor, error)
}

type EncounterService interface {
	CreatePatientWithEncounter(ctx context.Context, in encounter.Input) (*encounter.Encounter, error)
	DoctorAssessments(ctx context.Context, doctorID int64) ([]*encounter.Assessment, error)
	PatientAssessments(ctx context.Context, fullName string) ([]*encounter.Assessment, error)
	ListAssessments(ctx context.Context) ([]*encounter.Assessment, error)
	ListPrescriptions(ctx context.Context) ([]*encounter.Prescription, error)
	GetAssessment(ctx context.Context, id int64) (*encounter.Assessment, error)
	AssessmentsOfPatient(ctx context.Context, patientID int64) ([]*encounter.Assessment, error)
	PrescriptionsOfPatient(ctx context.Context, patientID int64) ([]*encounter.Prescription, error)
	PrescriptionOfAssessment(ctx context.Context, assessmentID int64) (*encounter.Prescription, error)
}

type InventoryService interface {
	List(ctx context.Context) ([]*inventory.Item, error)
}

// Services are the collaborators the resolvers call into.
type Services struct {
	Identity   IdentityService
	Encounters EncounterService
	Inventory  InventoryService
}

func NewSchema(svc Services) (graphql.Schema, error) {
	objs := newObjects(svc)
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    newQueryRoot(svc, objs),
		Mutation: newMutationRoot(svc, objs),
	})
}

func argString(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func argInt(p graphql.ResolveParams, name string) int {
	n, _ := p.Args[name].(int)
	return n
}
