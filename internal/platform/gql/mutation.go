package gql

import (
	"github.com/graphql-go/graphql"

	"github.com/clinic/clinic/internal/domain/encounter"
	"github.com/clinic/clinic/internal/domain/identity"
)

const registrationMessage = "Patient registration successful."

var createPatientPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreatePatientPayload",
	Fields: graphql.Fields{
		"ok":             &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"patientId":      &graphql.Field{Type: graphql.Int},
		"successMessage": &graphql.Field{Type: graphql.String},
	},
})

var loginPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "LoginPayload",
	Fields: graphql.Fields{
		"ok":       &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"token":    &graphql.Field{Type: graphql.String},
		"userId":   &graphql.Field{Type: graphql.Int},
		"fullName": &graphql.Field{Type: graphql.String},
		"userType": &graphql.Field{Type: graphql.String},
	},
})

func required(t graphql.Input) *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)}
}

func patientArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"fullName": required(graphql.String),
		"age":      required(graphql.Int),
		"gender":   required(graphql.String),
		"phone":    required(graphql.String),
		"address":  &graphql.ArgumentConfig{Type: graphql.String},
		"password": required(graphql.String),
	}
}

func patientInput(p graphql.ResolveParams) identity.PatientInput {
	return identity.PatientInput{
		FullName: argString(p, "fullName"),
		Age:      argInt(p, "age"),
		Gender:   argString(p, "gender"),
		Phone:    argString(p, "phone"),
		Address:  argString(p, "address"),
		Password: argString(p, "password"),
	}
}

func newMutationRoot(svc Services, objs *objects) *graphql.Object {
	createDoctorPayload := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateDoctorPayload",
		Fields: graphql.Fields{
			"doctor": &graphql.Field{Type: objs.doctor},
		},
	})
	encounterPayload := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreatePatientAssessmentWithPrescriptionPayload",
		Fields: graphql.Fields{
			"patient":      &graphql.Field{Type: objs.patient},
			"assessment":   &graphql.Field{Type: objs.assessment},
			"prescription": &graphql.Field{Type: objs.prescription},
		},
	})

	encounterArgs := patientArgs()
	for name, arg := range (graphql.FieldConfigArgument{
		"doctorId":     required(graphql.Int),
		"symptoms":     required(graphql.String),
		"diagnosis":    required(graphql.String),
		"medication":   required(graphql.String),
		"dosage":       required(graphql.String),
		"instructions": required(graphql.String),
	}) {
		encounterArgs[name] = arg
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createPatient": &graphql.Field{
				Type: graphql.NewNonNull(createPatientPayload),
				Args: patientArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					patient, err := svc.Identity.Register(p.Context, patientInput(p))
					if err != nil {
						return nil, resolveErr(p.Context, "createPatient", err)
					}
					return map[string]interface{}{
						"ok":             true,
						"patientId":      patient.ID,
						"successMessage": registrationMessage,
					}, nil
				},
			},
			"createDoctor": &graphql.Field{
				Type: graphql.NewNonNull(createDoctorPayload),
				Args: graphql.FieldConfigArgument{
					"fullName":  required(graphql.String),
					"specialty": required(graphql.String),
					"phone":     required(graphql.String),
					"email":     required(graphql.String),
					"password":  required(graphql.String),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					d, err := svc.Identity.CreateDoctor(p.Context, identity.DoctorInput{
						FullName:  argString(p, "fullName"),
						Specialty: argString(p, "specialty"),
						Phone:     argString(p, "phone"),
						Email:     argString(p, "email"),
						Password:  argString(p, "password"),
					})
					if err != nil {
						return nil, resolveErr(p.Context, "createDoctor", err)
					}
					return map[string]interface{}{"doctor": doctorMap(d)}, nil
				},
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(loginPayload),
				Args: graphql.FieldConfigArgument{
					"fullName": required(graphql.String),
					"password": required(graphql.String),
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := svc.Identity.Authenticate(p.Context, argString(p, "fullName"), argString(p, "password"))
					if err != nil {
						return nil, resolveErr(p.Context, "login", err)
					}
					return map[string]interface{}{
						"ok":       true,
						"token":    res.Token,
						"userId":   res.UserID,
						"fullName": res.FullName,
						"userType": string(res.UserType),
					}, nil
				},
			},
			"createPatientAssessmentWithPrescription": &graphql.Field{
				Type: graphql.NewNonNull(encounterPayload),
				Args: encounterArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					enc, err := svc.Encounters.CreatePatientWithEncounter(p.Context, encounter.Input{
						Patient:      patientInput(p),
						DoctorID:     int64(argInt(p, "doctorId")),
						Symptoms:     argString(p, "symptoms"),
						Diagnosis:    argString(p, "diagnosis"),
						Medication:   argString(p, "medication"),
						Dosage:       argString(p, "dosage"),
						Instructions: argString(p, "instructions"),
					})
					if err != nil {
						return nil, resolveErr(p.Context, "createPatientAssessmentWithPrescription", err)
					}
					return map[string]interface{}{
						"patient":      patientMap(enc.Patient),
						"assessment":   assessmentMap(enc.Assessment),
						"prescription": prescriptionMap(enc.Prescription),
					}, nil
				},
			},
		},
	})
}
