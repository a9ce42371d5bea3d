package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"
	server "github.com/secmon-lab/themis/pkg/controller/http"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/repository/memory"
	"github.com/secmon-lab/themis/pkg/service/storage"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/wizard"
)

func newServer(t *testing.T, opts ...usecase.Option) (http.Handler, *prometheus.Registry) {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir())
	gt.NoError(t, err).Required()

	reg := prometheus.NewRegistry()
	base := []usecase.Option{
		usecase.WithStorage(local),
		usecase.WithMetrics(reg),
	}
	uc := usecase.New(memory.New(), append(base, opts...)...)
	return server.New(uc, server.WithMetrics(reg)), reg
}

func noAuthn() usecase.Option {
	return usecase.WithAuth(usecase.WithNoAuthn())
}

func withSecret() usecase.Option {
	return usecase.WithAuth(usecase.WithJWTSecret([]byte("test-secret")), usecase.WithPasswordCost(4))
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v)).Required()
	return v
}

func TestHealthAndCORS(t *testing.T) {
	h, _ := newServer(t, noAuthn())

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Header().Get("Access-Control-Allow-Origin")).Equal("*")

	rec = doJSON(t, h, http.MethodOptions, "/api/risks", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)
}

func TestRiskAndTaskRoutes(t *testing.T) {
	h, _ := newServer(t, noAuthn())

	rec := doJSON(t, h, http.MethodPost, "/api/risks", "", map[string]string{"asset": "mail server"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	risk := decode[model.Risk](t, rec)
	gt.Value(t, risk.RiskID).NotEqual("")

	rec = doJSON(t, h, http.MethodGet, "/api/risks/"+risk.RiskID, "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decode[model.Risk](t, rec).Asset).Equal("mail server")

	rec = doJSON(t, h, http.MethodPut, "/api/risks/"+risk.RiskID, "", map[string]string{"riskId": "RR-1999-001"})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec = doJSON(t, h, http.MethodGet, "/api/risks/RR-1999-404", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	gt.String(t, decode[map[string]string](t, rec)["error"]).Contains("not found")

	rec = doJSON(t, h, http.MethodPost, "/api/tasks", "", map[string]string{"riskId": risk.RiskID})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec = doJSON(t, h, http.MethodPost, "/api/tasks", "", map[string]string{"riskId": risk.RiskID, "title": "patch"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = doJSON(t, h, http.MethodGet, "/api/tasks?riskId="+risk.RiskID, "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Array(t, decode[[]model.Task](t, rec)).Length(1)

	rec = doJSON(t, h, http.MethodDelete, "/api/risks/"+risk.RiskID, "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	rec = doJSON(t, h, http.MethodGet, "/api/tasks", "", nil)
	gt.Array(t, decode[[]model.Task](t, rec)).Length(0)
}

func TestComplianceRoutes(t *testing.T) {
	h, _ := newServer(t, noAuthn())

	control := map[string]string{"reference": "A.5.1", "title": "Policies"}
	rec := doJSON(t, h, http.MethodPost, "/api/controls", "", control)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	rec = doJSON(t, h, http.MethodPost, "/api/controls", "", control)
	gt.Value(t, rec.Code).Equal(http.StatusConflict)

	rec = doJSON(t, h, http.MethodPost, "/api/soa", "", map[string]any{"controlReference": "A.9.9"})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	rec = doJSON(t, h, http.MethodPost, "/api/soa", "", map[string]any{"controlReference": "A.5.1", "applicable": true})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = doJSON(t, h, http.MethodPost, "/api/gaps", "", map[string]string{"description": "no MFA", "status": "UNKNOWN"})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	rec = doJSON(t, h, http.MethodPost, "/api/gaps", "", map[string]string{"description": "no MFA"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	gt.Value(t, decode[model.Gap](t, rec).Status).Equal("OPEN")
}

func TestDocumentUpload(t *testing.T) {
	h, _ := newServer(t, noAuthn())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	gt.NoError(t, mw.WriteField("title", "Access Policy")).Required()
	part, err := mw.CreateFormFile("file", "policy.txt")
	gt.NoError(t, err).Required()
	_, err = part.Write([]byte("least privilege"))
	gt.NoError(t, err).Required()
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	doc := decode[model.Document](t, rec)
	gt.Value(t, doc.Title).Equal("Access Policy")
	gt.Bool(t, strings.HasPrefix(doc.URL, "/uploads/")).True()

	rec = doJSON(t, h, http.MethodGet, doc.URL, "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal("least privilege")

	rec = doJSON(t, h, http.MethodGet, "/uploads/missing.txt", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestAuthentication(t *testing.T) {
	h, _ := newServer(t, withSecret())

	register := map[string]string{"email": "admin@example.com", "password": "correct-horse", "name": "Admin"}
	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", register)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = doJSON(t, h, http.MethodGet, "/api/risks", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "wrong-password"})
	gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "correct-horse"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	adminToken := decode[usecase.LoginResult](t, rec).Token

	rec = doJSON(t, h, http.MethodGet, "/api/risks", adminToken, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "x@example.com", "password": "password123", "name": "X"})
	gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)

	auditor := map[string]string{"email": "audit@example.com", "password": "password123", "name": "Auditor", "role": "auditor", "department": "Internal Audit"}
	rec = doJSON(t, h, http.MethodPost, "/api/users", adminToken, auditor)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "audit@example.com", "password": "password123"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	auditorToken := decode[usecase.LoginResult](t, rec).Token

	rec = doJSON(t, h, http.MethodGet, "/api/users/departments", auditorToken, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	departments := decode[[]model.Department](t, rec)
	gt.Array(t, departments).Length(1)
	gt.Value(t, departments[0].Name).Equal("Internal Audit")

	rec = doJSON(t, h, http.MethodPost, "/api/risks", auditorToken, map[string]string{"asset": "x"})
	gt.Value(t, rec.Code).Equal(http.StatusForbidden)

	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", auditorToken, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decode[map[string]any](t, rec)["role"]).Equal("auditor")
}

func TestWizardRoutes(t *testing.T) {
	h, _ := newServer(t, noAuthn())

	rec := doJSON(t, h, http.MethodPost, "/api/wizards", "", map[string]string{})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	opened := decode[struct {
		ID   string `json:"id"`
		View struct {
			Draft model.Risk `json:"draft"`
		} `json:"view"`
	}](t, rec)
	gt.Value(t, opened.View.Draft.RiskID).NotEqual("")
	base := "/api/wizards/" + opened.ID

	type transition struct {
		Error  string `json:"error"`
		Result struct {
			Step   int    `json:"step"`
			Notice string `json:"notice"`
		} `json:"result"`
	}

	rec = doJSON(t, h, http.MethodPost, base+"/next", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	rejected := decode[transition](t, rec)
	gt.Value(t, rejected.Result.Step).Equal(1)
	gt.Value(t, rejected.Error).NotEqual("")

	rec = doJSON(t, h, http.MethodPatch, base+"/fields", "", map[string]any{"fields": map[string]string{
		"department":      "IT",
		"date":            "2025-03-14",
		"riskType":        "Operational",
		"assetType":       "Hardware",
		"location":        "HQ",
		"riskDescription": "Unpatched servers",
		"confidentiality": "high",
		"integrity":       "high",
		"availability":    "low",
		"probability":     "likely",
	}})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doJSON(t, h, http.MethodPost, base+"/next", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decode[transition](t, rec).Result.Step).Equal(2)

	rec = doJSON(t, h, http.MethodPost, base+"/submit", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusConflict)

	rec = doJSON(t, h, http.MethodPost, base+"/save", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doJSON(t, h, http.MethodPatch, base+"/fields", "", map[string]any{"fields": map[string]string{"riskId": "VPN-1"}})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	rec = doJSON(t, h, http.MethodPost, base+"/save", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	gt.Value(t, decode[transition](t, rec).Result.Notice).Equal(wizard.NoticeInvalidRiskID)

	rec = doJSON(t, h, http.MethodPatch, base+"/fields", "", map[string]any{"fields": map[string]string{"colour": "red"}})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec = doJSON(t, h, http.MethodDelete, base, "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	rec = doJSON(t, h, http.MethodGet, base, "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestMetrics(t *testing.T) {
	h, _ := newServer(t, noAuthn())

	rec := doJSON(t, h, http.MethodGet, "/api/risks/RR-2025-001", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)

	rec = doJSON(t, h, http.MethodGet, "/metrics", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains(`themis_http_requests_total{method="GET",route="/api/risks/{riskID}",status="404"} 1`)
	gt.String(t, rec.Body.String()).Contains("themis_wizard_sessions_open")
}
