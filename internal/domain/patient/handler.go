package patient

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/internal/platform/auth"
	"github.com/clinica-benavides/expedientes/pkg/pagination"
	"github.com/clinica-benavides/expedientes/pkg/patientid"
)

// Handler provides the patient HTTP surface.
type Handler struct {
	svc *Service
}

// NewHandler creates a new patient handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the patient routes. The list, search, edit and
// registration surfaces are doctor-only; the single-record view is scoped to
// the session identity.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	doctor := auth.RequireRole(auth.RoleDoctor)

	e.GET("/dashboard", h.Dashboard, doctor)
	e.GET("/buscar", h.Search, doctor)
	e.GET("/api/pacientes", h.APIList, doctor)
	e.GET("/paciente/:id", h.View)
	e.GET("/editar/:id", h.EditForm, doctor)
	e.POST("/editar/:id", h.Edit, doctor)
	e.POST("/alta-paciente", h.Register, doctor)
}

type listResponse struct {
	Patients []*Record `json:"pacientes"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
	HasMore  bool      `json:"has_more"`
}

// pageOf windows the full result set into the requested page. The practice
// is small enough that lists are paged in memory after the role filter.
func pageOf(records []*Record, p pagination.Params) listResponse {
	total := len(records)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return listResponse{
		Patients: records[start:end],
		Total:    total,
		Limit:    p.Limit,
		Offset:   p.Offset,
		HasMore:  p.HasNext(total),
	}
}

func (h *Handler) Dashboard(c echo.Context) error {
	records, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageOf(records, pagination.FromContext(c)))
}

func (h *Handler) Search(c echo.Context) error {
	records, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageOf(records, pagination.FromContext(c)))
}

// APIList serves the compact listing consumed by the frontend autocomplete.
func (h *Handler) APIList(c echo.Context) error {
	records, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	summaries := make([]Summary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, rec.Summary())
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *Handler) View(c echo.Context) error {
	id, err := patientid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validationf("identificador de paciente inválido")
	}
	ctx := c.Request().Context()
	if !auth.CanReadPatient(ctx, id) {
		return apperr.Forbiddenf("no autorizado para ver este expediente")
	}
	rec, err := h.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// EditForm returns the current record so the edit form can be prefilled.
func (h *Handler) EditForm(c echo.Context) error {
	id, err := patientid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validationf("identificador de paciente inválido")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Edit(c echo.Context) error {
	id, err := patientid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validationf("identificador de paciente inválido")
	}
	fields, err := bindFields(c)
	if err != nil {
		return err
	}
	if err := h.svc.Update(c.Request().Context(), id, fields); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "expediente actualizado",
		"id":      patientid.Format(id),
	})
}

func (h *Handler) Register(c echo.Context) error {
	fields, err := bindFields(c)
	if err != nil {
		return err
	}
	id, err := h.svc.Register(c.Request().Context(), fields)
	if err != nil {
		return err
	}
	ext := patientid.Format(id)
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "paciente registrado con folio " + ext,
		"id":      ext,
	})
}

// patientForm carries the full recognized field set. Dates arrive as
// YYYY-MM-DD strings; optional text fields arrive empty and become NULL.
type patientForm struct {
	GivenName        string   `json:"nombre" form:"nombre"`
	PaternalSurname  string   `json:"apellido_paterno" form:"apellido_paterno"`
	MaternalSurname  string   `json:"apellido_materno" form:"apellido_materno"`
	CURP             string   `json:"curp" form:"curp"`
	NSS              string   `json:"nss" form:"nss"`
	BirthDate        string   `json:"fecha_nacimiento" form:"fecha_nacimiento"`
	Sex              string   `json:"sexo" form:"sexo"`
	MaritalStatus    string   `json:"estado_civil" form:"estado_civil"`
	Street           string   `json:"calle" form:"calle"`
	ExteriorNumber   string   `json:"numero_exterior" form:"numero_exterior"`
	InteriorNumber   string   `json:"numero_interior" form:"numero_interior"`
	Neighborhood     string   `json:"colonia" form:"colonia"`
	PostalCode       string   `json:"codigo_postal" form:"codigo_postal"`
	City             string   `json:"ciudad" form:"ciudad"`
	State            string   `json:"estado" form:"estado"`
	Country          string   `json:"pais" form:"pais"`
	Phone            string   `json:"telefono" form:"telefono"`
	Email            string   `json:"correo" form:"correo"`
	EmergencyContact string   `json:"contacto_emergencia" form:"contacto_emergencia"`
	BloodType        string   `json:"tipo_sangre" form:"tipo_sangre"`
	HeightCM         *float64 `json:"altura" form:"altura"`
	WeightKG         *float64 `json:"peso" form:"peso"`
	Insurance        string   `json:"seguro_medico" form:"seguro_medico"`
}

func bindFields(c echo.Context) (*Fields, error) {
	var form patientForm
	if err := c.Bind(&form); err != nil {
		return nil, apperr.Wrap(apperr.Validation, "solicitud inválida", err)
	}
	f := &Fields{
		GivenName:        form.GivenName,
		PaternalSurname:  form.PaternalSurname,
		MaternalSurname:  optStr(form.MaternalSurname),
		CURP:             form.CURP,
		NSS:              optStr(form.NSS),
		Sex:              form.Sex,
		MaritalStatus:    optStr(form.MaritalStatus),
		Street:           optStr(form.Street),
		ExteriorNumber:   optStr(form.ExteriorNumber),
		InteriorNumber:   optStr(form.InteriorNumber),
		Neighborhood:     optStr(form.Neighborhood),
		PostalCode:       optStr(form.PostalCode),
		City:             optStr(form.City),
		State:            optStr(form.State),
		Country:          optStr(form.Country),
		Phone:            optStr(form.Phone),
		Email:            form.Email,
		EmergencyContact: optStr(form.EmergencyContact),
		BloodType:        optStr(form.BloodType),
		HeightCM:         form.HeightCM,
		WeightKG:         form.WeightKG,
		Insurance:        optStr(form.Insurance),
	}
	if form.BirthDate != "" {
		birth, err := time.Parse(DateLayout, form.BirthDate)
		if err != nil {
			return nil, apperr.Validationf("fecha_nacimiento inválida: %s", form.BirthDate)
		}
		f.BirthDate = &birth
	}
	return f, nil
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
