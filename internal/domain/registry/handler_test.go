package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo, *Service) {
	svc := newTestService()
	return NewHandler(svc), echo.New(), svc
}

func TestHandler_RegisterPatient(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"first_name":"Jane","last_name":"Doe","date_of_birth":"1990-04-12T00:00:00Z","gender":"Female","phone_number":"555-0100","email":"jane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RegisterPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.FirstName != "Jane" {
		t.Errorf("expected Jane, got %s", p.FirstName)
	}
	if p.ID == uuid.Nil {
		t.Error("expected id in response")
	}
}

func TestHandler_RegisterPatient_Validation(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"last_name":"Doe"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.RegisterPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_RegisterPatient_Conflict(t *testing.T) {
	h, e, svc := newTestHandler()

	if err := svc.RegisterPatient(context.Background(), validPatient()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := `{"first_name":"Other","last_name":"Person","date_of_birth":"1985-01-01T00:00:00Z","gender":"Male","phone_number":"555-0100","email":"other@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.RegisterPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_GetPatient_InvalidID(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_RegisterDoctor_DuplicateLicense(t *testing.T) {
	h, e, svc := newTestHandler()

	if err := svc.RegisterDoctor(context.Background(), validDoctor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := `{"first_name":"Lisa","last_name":"Cuddy","specialization":"Endocrinology","phone_number":"555-0400","email":"cuddy@example.com","license_number":"LIC-001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctors", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.RegisterDoctor(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_RegisterDoctor_AvailableDefault(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"first_name":"Greg","last_name":"House","specialization":"Diagnostics","phone_number":"555-0200","email":"house@example.com","license_number":"LIC-001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctors", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RegisterDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var d Doctor
	json.Unmarshal(rec.Body.Bytes(), &d)
	if !d.Available {
		t.Error("expected omitted available to default to true")
	}
}

func TestHandler_RegisterDoctor_ExplicitUnavailable(t *testing.T) {
	h, e, svc := newTestHandler()

	body := `{"first_name":"Lisa","last_name":"Cuddy","specialization":"Endocrinology","phone_number":"555-0400","email":"cuddy@example.com","license_number":"LIC-002","available":false}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctors", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RegisterDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var d Doctor
	json.Unmarshal(rec.Body.Bytes(), &d)
	if d.Available {
		t.Error("expected explicit available=false to be kept")
	}

	got, err := svc.GetDoctor(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Available {
		t.Error("expected stored doctor to be unavailable")
	}
}

func TestHandler_DeleteDoctor(t *testing.T) {
	h, e, svc := newTestHandler()

	d := validDoctor()
	if err := svc.RegisterDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	if err := h.DeleteDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_ListPatients(t *testing.T) {
	h, e, svc := newTestHandler()

	if err := svc.RegisterPatient(context.Background(), validPatient()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Errorf("expected total 1, got %d", resp.Total)
	}
}
