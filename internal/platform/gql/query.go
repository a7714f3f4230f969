package gql

import (
	"github.com/graphql-go/graphql"

	"github.com/clinic/clinic/internal/platform/auth"
)

func newQueryRoot(svc Services, objs *objects) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"allPatients": &graphql.Field{
				Type: listOf(objs.patient),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := svc.Identity.ListPatients(p.Context)
					if err != nil {
						return nil, resolveErr(p.Context, "allPatients", err)
					}
					return mapAll(rows, patientMap), nil
				},
			},
			"allDoctors": &graphql.Field{
				Type: listOf(objs.doctor),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := svc.Identity.ListDoctors(p.Context)
					if err != nil {
						return nil, resolveErr(p.Context, "allDoctors", err)
					}
					return mapAll(rows, doctorMap), nil
				},
			},
			"allAssessments": &graphql.Field{
				Type: listOf(objs.assessment),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := svc.Encounters.ListAssessments(p.Context)
					if err != nil {
						return nil, resolveErr(p.Context, "allAssessments", err)
					}
					return mapAll(rows, assessmentMap), nil
				},
			},
			"allPrescriptions": &graphql.Field{
				Type: listOf(objs.prescription),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := svc.Encounters.ListPrescriptions(p.Context)
					if err != nil {
						return nil, resolveErr(p.Context, "allPrescriptions", err)
					}
					return mapAll(rows, prescriptionMap), nil
				},
			},
			"allInventory": &graphql.Field{
				Type: listOf(inventoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := svc.Inventory.List(p.Context)
					if err != nil {
						return nil, resolveErr(p.Context, "allInventory", err)
					}
					return mapAll(rows, inventoryMap), nil
				},
			},
			"userExists": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: `"Doctor", "Patient" or "NotFound"; doctors are checked first`,
				Args: graphql.FieldConfigArgument{
					"fullName": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, err := svc.Identity.Exists(p.Context, argString(p, "fullName"))
					if err != nil {
						return nil, resolveErr(p.Context, "userExists", err)
					}
					return string(kind), nil
				},
			},
			"doctorAssessments": &graphql.Field{
				Type: listOf(objs.assessment),
				Args: graphql.FieldConfigArgument{
					"doctorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := svc.Encounters.DoctorAssessments(p.Context, int64(argInt(p, "doctorId")))
					if err != nil {
						return nil, resolveErr(p.Context, "doctorAssessments", err)
					}
					return mapAll(rows, assessmentMap), nil
				},
			},
			"patientAssessments": &graphql.Field{
				Type:        listOf(objs.assessment),
				Description: "Assessments of the first patient with this name; empty when none matches",
				Args: graphql.FieldConfigArgument{
					"fullName": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := svc.Encounters.PatientAssessments(p.Context, argString(p, "fullName"))
					if err != nil {
						return nil, resolveErr(p.Context, "patientAssessments", err)
					}
					return mapAll(rows, assessmentMap), nil
				},
			},
			"me": &graphql.Field{
				Type: meType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					principal := auth.PrincipalFromContext(p.Context)
					if principal == nil {
						return nil, nil
					}
					return meMap(principal), nil
				},
			},
		},
	})
}
