package gql

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/clinic/clinic/internal/domain/encounter"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/inventory"
	"github.com/clinic/clinic/internal/platform/auth"
)

// Object types are fed by the mapping functions below, never by reflection
// over storage models, so credential hashes cannot leak into the schema.

// objects holds the entity types of one schema. Relationship fields resolve
// through the services, so they are built per schema and wired lazily to
// allow the Patient <-> Assessment <-> Prescription cycles.
type objects struct {
	patient      *graphql.Object
	doctor       *graphql.Object
	assessment   *graphql.Object
	prescription *graphql.Object
}

func newObjects(svc Services) *objects {
	o := &objects{}

	o.patient = graphql.NewObject(graphql.ObjectConfig{
		Name: "Patient",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"patientId":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"fullName":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"age":            &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"gender":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"phone":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"address":        &graphql.Field{Type: graphql.String},
				"dateRegistered": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"assessments": &graphql.Field{
					Type: listOf(o.assessment),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						rows, err := svc.Encounters.AssessmentsOfPatient(p.Context, sourceID(p, "id"))
						if err != nil {
							return nil, resolveErr(p.Context, "Patient.assessments", err)
						}
						return mapAll(rows, assessmentMap), nil
					},
				},
				"prescriptions": &graphql.Field{
					Type: listOf(o.prescription),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						rows, err := svc.Encounters.PrescriptionsOfPatient(p.Context, sourceID(p, "id"))
						if err != nil {
							return nil, resolveErr(p.Context, "Patient.prescriptions", err)
						}
						return mapAll(rows, prescriptionMap), nil
					},
				},
			}
		}),
	})

	o.doctor = graphql.NewObject(graphql.ObjectConfig{
		Name: "Doctor",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"doctorId":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"fullName":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"specialty": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"phone":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"assessments": &graphql.Field{
					Type: listOf(o.assessment),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						rows, err := svc.Encounters.DoctorAssessments(p.Context, sourceID(p, "id"))
						if err != nil {
							return nil, resolveErr(p.Context, "Doctor.assessments", err)
						}
						return mapAll(rows, assessmentMap), nil
					},
				},
			}
		}),
	})

	o.assessment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Assessment",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"assessmentId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"patientId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"doctorId":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"symptoms":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"diagnosis":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"date":         &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"patient": &graphql.Field{
					Type: o.patient,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						row, err := svc.Identity.GetPatient(p.Context, sourceID(p, "patientId"))
						return resolveOne(p, "Assessment.patient", row, err, patientMap)
					},
				},
				"doctor": &graphql.Field{
					Type: o.doctor,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						row, err := svc.Identity.GetDoctor(p.Context, sourceID(p, "doctorId"))
						return resolveOne(p, "Assessment.doctor", row, err, doctorMap)
					},
				},
				"prescription": &graphql.Field{
					Type:        o.prescription,
					Description: "Null until a prescription is written for this assessment",
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						row, err := svc.Encounters.PrescriptionOfAssessment(p.Context, sourceID(p, "id"))
						return resolveOne(p, "Assessment.prescription", row, err, prescriptionMap)
					},
				},
			}
		}),
	})

	o.prescription = graphql.NewObject(graphql.ObjectConfig{
		Name: "Prescription",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"prescriptionId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"patientId":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"assessmentId":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"medication":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"dosage":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"instructions":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"datePrescribed": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"patient": &graphql.Field{
					Type: o.patient,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						row, err := svc.Identity.GetPatient(p.Context, sourceID(p, "patientId"))
						return resolveOne(p, "Prescription.patient", row, err, patientMap)
					},
				},
				"assessment": &graphql.Field{
					Type: o.assessment,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						row, err := svc.Encounters.GetAssessment(p.Context, sourceID(p, "assessmentId"))
						return resolveOne(p, "Prescription.assessment", row, err, assessmentMap)
					},
				},
			}
		}),
	})

	return o
}

var inventoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Inventory",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"inventoryId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"drugName":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"supplier":    &graphql.Field{Type: graphql.String},
		"lastStocked": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var meType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Me",
	Description: "The identity carried by the request's bearer token",
	Fields: graphql.Fields{
		"userId":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"userType": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"fullName": &graphql.Field{Type: graphql.String},
	},
})

func listOf(t *graphql.Object) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t)))
}

// sourceID reads an id column from the parent object's map.
func sourceID(p graphql.ResolveParams, key string) int64 {
	m, _ := p.Source.(map[string]interface{})
	id, _ := m[key].(int64)
	return id
}

// resolveOne maps a single related row; a missing row resolves to null.
func resolveOne[T any](p graphql.ResolveParams, op string, row T, err error, fn func(T) map[string]interface{}) (interface{}, error) {
	if errors.Is(err, identity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, resolveErr(p.Context, op, err)
	}
	return fn(row), nil
}

// -- mapping --

func patientMap(p *identity.Patient) map[string]interface{} {
	m := map[string]interface{}{
		"id":             p.ID,
		"patientId":      p.ID,
		"fullName":       p.FullName,
		"age":            p.Age,
		"gender":         p.Gender,
		"phone":          p.Phone,
		"dateRegistered": p.DateRegistered,
	}
	if p.Address != nil {
		m["address"] = *p.Address
	}
	return m
}

func doctorMap(d *identity.Doctor) map[string]interface{} {
	return map[string]interface{}{
		"id":        d.ID,
		"doctorId":  d.ID,
		"fullName":  d.FullName,
		"specialty": d.Specialty,
		"phone":     d.Phone,
		"email":     d.Email,
	}
}

func assessmentMap(a *encounter.Assessment) map[string]interface{} {
	return map[string]interface{}{
		"id":           a.ID,
		"assessmentId": a.ID,
		"patientId":    a.PatientID,
		"doctorId":     a.DoctorID,
		"symptoms":     a.Symptoms,
		"diagnosis":    a.Diagnosis,
		"date":         a.Date,
	}
}

func prescriptionMap(rx *encounter.Prescription) map[string]interface{} {
	return map[string]interface{}{
		"id":             rx.ID,
		"prescriptionId": rx.ID,
		"patientId":      rx.PatientID,
		"assessmentId":   rx.AssessmentID,
		"medication":     rx.Medication,
		"dosage":         rx.Dosage,
		"instructions":   rx.Instructions,
		"datePrescribed": rx.DatePrescribed,
	}
}

func inventoryMap(it *inventory.Item) map[string]interface{} {
	m := map[string]interface{}{
		"id":          it.ID,
		"inventoryId": it.ID,
		"drugName":    it.DrugName,
		"quantity":    it.Quantity,
		"lastStocked": it.LastStocked,
	}
	if it.Supplier != nil {
		m["supplier"] = *it.Supplier
	}
	return m
}

func meMap(p *auth.Principal) map[string]interface{} {
	m := map[string]interface{}{
		"userId":   p.UserID,
		"userType": string(p.UserType),
	}
	if p.FullName != "" {
		m["fullName"] = p.FullName
	}
	return m
}

func mapAll[T any](rows []T, fn func(T) map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}
