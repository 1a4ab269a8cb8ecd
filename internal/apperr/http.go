package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler returns an echo error handler that maps classified errors
// to JSON responses. The wrapped cause is logged with the request id but
// never leaks to the client.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "error interno del servidor"

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = HTTPStatus(appErr.Kind)
			msg = appErr.Msg
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if s, ok := httpErr.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(status)
			}
		}

		rid, _ := c.Get("request_id").(string)
		evt := logger.Warn()
		if status >= http.StatusInternalServerError {
			evt = logger.Error()
		}
		evt.Err(err).
			Str("request_id", rid).
			Str("path", c.Request().URL.Path).
			Int("status", status).
			Msg("request failed")

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, map[string]string{"error": msg})
	}
}
