package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/internal/platform/auth"
)

func newHandlerEnv(t *testing.T) (*Handler, *mockRepo, *echo.Echo) {
	t.Helper()
	repo := newMockRepo()
	return NewHandler(newTestService(repo)), repo, echo.New()
}

func asDoctor(req *http.Request) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), 1, []string{auth.RoleDoctor}))
}

func asPatient(req *http.Request, id int64) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), id, []string{auth.RolePatient}))
}

func TestHandler_Dashboard(t *testing.T) {
	h, repo, e := newHandlerEnv(t)
	seedWendy(t, repo)

	req := asDoctor(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Patients) != 1 {
		t.Fatalf("expected one patient, got %+v", resp)
	}
	if resp.Patients[0].FullName != "Wendy Lizeth Rascón" {
		t.Errorf("full name = %q", resp.Patients[0].FullName)
	}
	if got := resp.Patients[0].ExternalID; got != "P0000000001" {
		t.Errorf("external id = %q", got)
	}
}

func TestHandler_Dashboard_Pagination(t *testing.T) {
	h, repo, e := newHandlerEnv(t)
	seedWendy(t, repo)
	for _, f := range []string{"MECA", "MECB", "MECC"} {
		fields := validFields()
		fields.CURP = f
		fields.Email = f + "@example.com"
		if _, err := repo.Create(context.Background(), fields, "h"); err != nil {
			t.Fatalf("seed extra patient: %v", err)
		}
	}

	req := asDoctor(httptest.NewRequest(http.MethodGet, "/dashboard?limit=2&offset=2", nil))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 4 || len(resp.Patients) != 2 {
		t.Fatalf("expected page of 2 out of 4, got %+v", resp)
	}
	if resp.HasMore {
		t.Error("offset 2 + limit 2 covers the set, has_more should be false")
	}
}

func TestHandler_Search(t *testing.T) {
	h, repo, e := newHandlerEnv(t)
	seedWendy(t, repo)

	req := asDoctor(httptest.NewRequest(http.MethodGet, "/buscar?q=Rasc%C3%B3n", nil))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected one match, got %d", resp.Total)
	}
}

func TestHandler_APIList_Summaries(t *testing.T) {
	h, repo, e := newHandlerEnv(t)
	seedWendy(t, repo)

	req := asDoctor(httptest.NewRequest(http.MethodGet, "/api/pacientes", nil))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.APIList(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var summaries []Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "P0000000001" {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
	if strings.Contains(rec.Body.String(), "correo") {
		t.Error("summary listing leaked full record fields")
	}
}

func TestHandler_View_DoctorReadsAnyRecord(t *testing.T) {
	h, repo, e := newHandlerEnv(t)
	seedWendy(t, repo)

	req := asDoctor(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P0000000001")

	if err := h.View(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "RACW050729MMCSHNA2") {
		t.Errorf("expected full record, got %s", rec.Body.String())
	}
}

func TestHandler_View_PatientReadsOwnRecordOnly(t *testing.T) {
	h, repo, e := newHandlerEnv(t)
	id := seedWendy(t, repo)

	// Own record is allowed.
	req := asPatient(httptest.NewRequest(http.MethodGet, "/", nil), id)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P0000000001")
	if err := h.View(c); err != nil {
		t.Fatalf("own record should be readable: %v", err)
	}

	// Another patient's record is not.
	req = asPatient(httptest.NewRequest(http.MethodGet, "/", nil), id+5)
	c = e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("P0000000001")
	if err := h.View(c); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("expected Forbidden, got %v", err)
	}
}

func TestHandler_View_BadID(t *testing.T) {
	h, _, e := newHandlerEnv(t)

	req := asDoctor(httptest.NewRequest(http.MethodGet, "/", nil))
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("P42")

	if err := h.View(c); !apperr.Is(err, apperr.Validation) {
		t.Errorf("expected Validation, got %v", err)
	}
}

func TestHandler_Edit_FormPost(t *testing.T) {
	h, repo, e := newHandlerEnv(t)
	seedWendy(t, repo)

	form := url.Values{}
	form.Set("nombre", "Wendy Lizeth")
	form.Set("apellido_paterno", "Rascón")
	form.Set("apellido_materno", "Chávez")
	form.Set("curp", "RACW050729MMCSHNA2")
	form.Set("fecha_nacimiento", "2005-07-29")
	form.Set("sexo", "femenino")
	form.Set("correo", "wendy@example.com")
	form.Set("telefono", "5551234567")

	req := asDoctor(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode())))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P0000000001")

	if err := h.Edit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := repo.byID[1]
	if stored.MaternalSurname == nil || *stored.MaternalSurname != "Chávez" {
		t.Errorf("maternal surname not stored: %+v", stored)
	}
	if stored.Phone == nil || *stored.Phone != "5551234567" {
		t.Errorf("phone not stored: %+v", stored)
	}
}

func TestHandler_Edit_BadDate(t *testing.T) {
	h, repo, e := newHandlerEnv(t)
	seedWendy(t, repo)

	body := `{"nombre":"W","apellido_paterno":"R","curp":"X","fecha_nacimiento":"29/07/2005","sexo":"femenino","correo":"w@e.com"}`
	req := asDoctor(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("P0000000001")

	if err := h.Edit(c); !apperr.Is(err, apperr.Validation) {
		t.Errorf("expected Validation for bad date, got %v", err)
	}
}

func TestHandler_Register_ReturnsFolio(t *testing.T) {
	h, _, e := newHandlerEnv(t)

	body := `{"nombre":"Carlos","apellido_paterno":"Mendoza","curp":"MECX900315HCHNRR01",` +
		`"fecha_nacimiento":"1990-03-15","sexo":"masculino","correo":"carlos@example.com"}`
	req := asDoctor(httptest.NewRequest(http.MethodPost, "/alta-paciente", strings.NewReader(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["id"] != "P0000000001" {
		t.Errorf("id = %q", resp["id"])
	}
	if !strings.Contains(resp["message"], "P0000000001") {
		t.Errorf("message should carry the new folio, got %q", resp["message"])
	}
}

func TestHandler_RoutesRequireDoctorRole(t *testing.T) {
	_, repo, e := newHandlerEnv(t)
	seedWendy(t, repo)
	h := NewHandler(newTestService(repo))
	h.RegisterRoutes(e)

	req := asPatient(httptest.NewRequest(http.MethodGet, "/dashboard", nil), 1)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-doctor on /dashboard, got %d", rec.Code)
	}
}
