package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinica-benavides/expedientes/internal/platform/auth"
)

// AccessLog emits a structured log line for every request that touches
// patient data, recording who accessed which record and what they did.
// This complements the persisted history_audit table, which only covers
// clinical-history writes.
func AccessLog(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !touchesPatientData(path) {
				return next(c)
			}

			err := next(c)

			ctx := req.Context()
			rid, _ := c.Get("request_id").(string)
			logger.Info().
				Str("type", "patient_access").
				Str("request_id", rid).
				Int64("user_id", auth.UserIDFromContext(ctx)).
				Strs("user_roles", auth.RolesFromContext(ctx)).
				Str("action", methodToAction(req.Method)).
				Str("patient_ref", patientRefFromPath(c)).
				Str("method", req.Method).
				Str("path", path).
				Str("remote_ip", c.RealIP()).
				Int("status", c.Response().Status).
				Time("at", time.Now().UTC()).
				Msg("patient_access")

			return err
		}
	}
}

var patientPathPrefixes = []string{
	"/paciente/",
	"/editar/",
	"/historial/",
	"/actualizar-historial",
	"/alta-paciente",
	"/buscar",
	"/dashboard",
	"/api/pacientes",
}

func touchesPatientData(path string) bool {
	for _, p := range patientPathPrefixes {
		if path == strings.TrimSuffix(p, "/") || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// patientRefFromPath pulls the external patient id out of the route param
// when the route carries one. Empty for list/search endpoints.
func patientRefFromPath(c echo.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return ""
}
