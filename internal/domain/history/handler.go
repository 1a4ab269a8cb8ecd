package history

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/internal/platform/auth"
	"github.com/clinica-benavides/expedientes/pkg/patientid"
)

// Handler provides the clinical history HTTP surface.
type Handler struct {
	svc *Service
}

// NewHandler creates a new history handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the history routes. Section updates and the audit
// trail are doctor-only; the read view is scoped to the session identity.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	doctor := auth.RequireRole(auth.RoleDoctor)

	e.GET("/historial/:id", h.View)
	e.GET("/historial/:id/auditoria", h.Audit, doctor)
	e.GET("/historial/editar/:id", h.EditForm, doctor)
	e.POST("/historial/editar/:id", h.Edit, doctor)
	e.POST("/actualizar-historial", h.Update, doctor)
}

func (h *Handler) View(c echo.Context) error {
	id, err := patientid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validationf("identificador de paciente inválido")
	}
	ctx := c.Request().Context()
	if !auth.CanReadPatient(ctx, id) {
		return apperr.Forbiddenf("no autorizado para ver este historial")
	}
	hist, err := h.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hist)
}

// EditForm returns the current history so the edit form can be prefilled. A
// patient with no history yet gets an empty one rather than a 404.
func (h *Handler) EditForm(c echo.Context) error {
	id, err := patientid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validationf("identificador de paciente inválido")
	}
	hist, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return c.JSON(http.StatusOK, &ClinicalHistory{
				PatientID:  id,
				PatientRef: patientid.Format(id),
			})
		}
		return err
	}
	return c.JSON(http.StatusOK, hist)
}

type updateRequest struct {
	PatientRef json.RawMessage `json:"paciente_id"`
	Section    string          `json:"seccion"`
	Data       json.RawMessage `json:"datos"`
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Edit applies a section update to the patient named in the path.
func (h *Handler) Edit(c echo.Context) error {
	id, err := patientid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validationf("identificador de paciente inválido")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "solicitud inválida", err)
	}
	return h.apply(c, id, req.Section, req.Data)
}

// Update applies a section update to the patient named in the JSON body.
func (h *Handler) Update(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "solicitud inválida", err)
	}
	id, err := parsePatientRef(req.PatientRef)
	if err != nil {
		return err
	}
	return h.apply(c, id, req.Section, req.Data)
}

func (h *Handler) apply(c echo.Context, patientID int64, section string, data json.RawMessage) error {
	upd, err := ParseSectionUpdate(section, data)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.UpdateSection(ctx, patientID, upd, auth.UserIDFromContext(ctx)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateResponse{
		Success: true,
		Message: "historial actualizado",
	})
}

func (h *Handler) Audit(c echo.Context) error {
	id, err := patientid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validationf("identificador de paciente inválido")
	}
	entries, err := h.svc.Audit(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []AuditEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// parsePatientRef accepts the external "P"-prefixed form, a bare numeric
// string, or a JSON number.
func parsePatientRef(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, apperr.Validationf("paciente_id es requerido")
	}
	s = strings.Trim(s, `"`)
	id, err := patientid.Parse(s)
	if err != nil {
		return 0, apperr.Validationf("paciente_id inválido: %s", s)
	}
	return id, nil
}
