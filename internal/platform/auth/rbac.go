package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role names as stored in the roles table.
const (
	RoleDoctor         = "doctor"
	RolePharmacist     = "farmaceutico"
	RoleAdministrative = "administrativo"
	RolePatient        = "paciente"
)

// RequireRole returns middleware that checks if the user holds at least one
// of the specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("se requiere rol: %s", strings.Join(roles, " o ")))
		}
	}
}

// HasRole reports whether the context identity holds the given role.
func HasRole(ctx context.Context, role string) bool {
	for _, r := range RolesFromContext(ctx) {
		if r == role {
			return true
		}
	}
	return false
}

// IsDoctor reports whether the context identity holds the doctor role.
// Doctors may read every patient record; other roles only their own.
func IsDoctor(ctx context.Context) bool {
	return HasRole(ctx, RoleDoctor)
}

// CanReadPatient applies the read-scope rule: doctors read all records,
// everyone else only the record matching their own user id.
func CanReadPatient(ctx context.Context, patientID int64) bool {
	if IsDoctor(ctx) {
		return true
	}
	return UserIDFromContext(ctx) == patientID
}
