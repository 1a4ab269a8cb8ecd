package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// PublicPathSkipper returns a skipper that exempts the login flow and
// health/infrastructure endpoints from session authentication.
func PublicPathSkipper() func(echo.Context) bool {
	public := map[string]bool{
		"/":       true,
		"/login":  true,
		"/health": true,
	}
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		if public[path] {
			return true
		}
		return strings.HasPrefix(path, "/health/")
	}
}
