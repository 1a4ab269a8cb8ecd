package identity

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/internal/platform/auth"
)

// Handler provides the login/logout HTTP surface.
type Handler struct {
	svc        *Service
	secret     []byte
	sessionTTL time.Duration
}

// NewHandler creates a new identity handler.
func NewHandler(svc *Service, secret []byte, sessionTTL time.Duration) *Handler {
	return &Handler{svc: svc, secret: secret, sessionTTL: sessionTTL}
}

// RegisterRoutes registers the identity routes. Login is public; the rest
// sit behind the session middleware installed globally.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)
	e.GET("/me", h.Me)
}

// loginRequest accepts both field name variants the clients send: the JSON
// API uses email/password, the older form posts usuario/contrasena.
type loginRequest struct {
	Email      string `json:"email" form:"email"`
	Usuario    string `json:"usuario" form:"usuario"`
	Password   string `json:"password" form:"password"`
	Contrasena string `json:"contrasena" form:"contrasena"`
}

func (r *loginRequest) email() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Usuario
}

func (r *loginRequest) password() string {
	if r.Password != "" {
		return r.Password
	}
	return r.Contrasena
}

type loginResponse struct {
	Token   string `json:"token"`
	Usuario *User  `json:"usuario"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "solicitud inválida", err)
	}

	u, err := h.svc.Authenticate(c.Request().Context(), req.email(), req.password())
	if err != nil {
		return err
	}

	token, err := auth.IssueToken(u.ID, u.Roles, h.secret, h.sessionTTL)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "error interno del servidor", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, loginResponse{Token: token, Usuario: u})
}

func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "sesión cerrada"})
}

// Me resolves the session back to the full user record.
func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	u, err := h.svc.LoadUser(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
