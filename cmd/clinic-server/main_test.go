package main

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/encounter"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/inventory"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/gql"
	"github.com/clinic/clinic/migrations"
)

// -- fakes --

type stubIdentity struct{}

func (stubIdentity) Register(ctx context.Context, in identity.PatientInput) (*identity.Patient, error) {
	return &identity.Patient{ID: 1, FullName: in.FullName}, nil
}
func (stubIdentity) CreateDoctor(ctx context.Context, in identity.DoctorInput) (*identity.Doctor, error) {
	return &identity.Doctor{ID: 1, FullName: in.FullName}, nil
}
func (stubIdentity) Authenticate(ctx context.Context, fullName, secret string) (*identity.LoginResult, error) {
	return nil, identity.ErrNotFound
}
func (stubIdentity) Exists(ctx context.Context, fullName string) (auth.UserKind, error) {
	return identity.KindNone, nil
}
func (stubIdentity) ListPatients(ctx context.Context) ([]*identity.Patient, error) { return nil, nil }
func (stubIdentity) ListDoctors(ctx context.Context) ([]*identity.Doctor, error)   { return nil, nil }
func (stubIdentity) GetPatient(ctx context.Context, id int64) (*identity.Patient, error) {
	return nil, identity.ErrNotFound
}
func (stubIdentity) GetDoctor(ctx context.Context, id int64) (*identity.Doctor, error) {
	return nil, identity.ErrNotFound
}

type stubEncounters struct{}

func (stubEncounters) CreatePatientWithEncounter(ctx context.Context, in encounter.Input) (*encounter.Encounter, error) {
	return nil, encounter.ErrDoctorNotFound
}
func (stubEncounters) DoctorAssessments(ctx context.Context, doctorID int64) ([]*encounter.Assessment, error) {
	return nil, nil
}
func (stubEncounters) PatientAssessments(ctx context.Context, fullName string) ([]*encounter.Assessment, error) {
	return nil, nil
}
func (stubEncounters) ListAssessments(ctx context.Context) ([]*encounter.Assessment, error) {
	return nil, nil
}
func (stubEncounters) ListPrescriptions(ctx context.Context) ([]*encounter.Prescription, error) {
	return nil, nil
}
func (stubEncounters) GetAssessment(ctx context.Context, id int64) (*encounter.Assessment, error) {
	return nil, identity.ErrNotFound
}
func (stubEncounters) AssessmentsOfPatient(ctx context.Context, patientID int64) ([]*encounter.Assessment, error) {
	return nil, nil
}
func (stubEncounters) PrescriptionsOfPatient(ctx context.Context, patientID int64) ([]*encounter.Prescription, error) {
	return nil, nil
}
func (stubEncounters) PrescriptionOfAssessment(ctx context.Context, assessmentID int64) (*encounter.Prescription, error) {
	return nil, identity.ErrNotFound
}

type stubInventory struct{}

func (stubInventory) List(ctx context.Context) ([]*inventory.Item, error) {
	return []*inventory.Item{{ID: 3, DrugName: "Ibuprofen", Quantity: 40, LastStocked: time.Now()}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Env:            "development",
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   100,
		RateLimitBurst: 200,
		BodyLimit:      "1M",
	}
}

func newTestServer(t *testing.T) (http.Handler, *auth.TokenIssuer) {
	t.Helper()
	issuer := auth.NewTokenIssuer([]byte("test-signing-key"), "clinic", time.Hour)
	svc := gql.Services{Identity: stubIdentity{}, Encounters: stubEncounters{}, Inventory: stubInventory{}}
	e, err := newServer(testConfig(), zerolog.New(io.Discard), svc, issuer, nil)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return e, issuer
}

func postQuery(t *testing.T, h http.Handler, query, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on every response")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestServer_HealthIgnoresBadToken(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestServer_GraphQLQuery(t *testing.T) {
	h, _ := newTestServer(t)
	rec := postQuery(t, h, `{ allInventory { inventoryId drugName quantity } }`, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			AllInventory []struct {
				InventoryID int    `json:"inventoryId"`
				DrugName    string `json:"drugName"`
				Quantity    int    `json:"quantity"`
			} `json:"allInventory"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.AllInventory) != 1 || resp.Data.AllInventory[0].DrugName != "Ibuprofen" {
		t.Errorf("unexpected inventory %+v", resp.Data.AllInventory)
	}
	if resp.Data.AllInventory[0].InventoryID != 3 {
		t.Errorf("expected inventoryId 3, got %d", resp.Data.AllInventory[0].InventoryID)
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("expected rate limit headers on the graphql endpoint")
	}
}

func TestServer_InvalidBearerStillReachesLogin(t *testing.T) {
	h, _ := newTestServer(t)
	rec := postQuery(t, h, `{ me { userId } }`, "garbage")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"me":null`) {
		t.Errorf("expected anonymous me, got %s", rec.Body.String())
	}
	if rec.Header().Get("WWW-Authenticate") != auth.InvalidTokenChallenge {
		t.Errorf("expected token challenge header, got %q", rec.Header().Get("WWW-Authenticate"))
	}
}

func TestServer_MalformedAuthorizationRejected(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ me { userId } }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestServer_MeFromToken(t *testing.T) {
	h, issuer := newTestServer(t)
	token, err := issuer.Issue(auth.Principal{UserID: 12, UserType: auth.KindDoctor, FullName: "Meredith Grey"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := postQuery(t, h, `{ me { userId userType fullName } }`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Me *struct {
				UserID   int    `json:"userId"`
				UserType string `json:"userType"`
				FullName string `json:"fullName"`
			} `json:"me"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Me == nil {
		t.Fatal("expected me to be resolved from the token")
	}
	if resp.Data.Me.UserID != 12 || resp.Data.Me.UserType != "Doctor" {
		t.Errorf("unexpected principal %+v", *resp.Data.Me)
	}
}

func TestServer_MeAnonymous(t *testing.T) {
	h, _ := newTestServer(t)
	rec := postQuery(t, h, `{ me { userId } }`, "")

	if !strings.Contains(rec.Body.String(), `"me":null`) {
		t.Errorf("expected null me for anonymous request, got %s", rec.Body.String())
	}
}

func TestMigrationSource(t *testing.T) {
	if migrationSource("") != migrations.FS {
		t.Error("expected the embedded migrations when no directory is given")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("SELECT 1;"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := fs.ReadFile(migrationSource(dir), "001_init.sql")
	if err != nil {
		t.Fatalf("read from directory source: %v", err)
	}
	if string(data) != "SELECT 1;" {
		t.Errorf("unexpected contents %q", data)
	}
}
