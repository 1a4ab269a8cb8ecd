package identity

import (
	"context"
	"strings"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/internal/platform/auth"
)

// Service provides authentication and account management.
type Service struct {
	users Repository
}

// NewService creates a new identity service.
func NewService(users Repository) *Service {
	return &Service{users: users}
}

// errBadCredentials is returned for unknown email AND wrong password alike,
// so the login endpoint cannot be used to enumerate accounts.
func errBadCredentials() error {
	return apperr.New(apperr.Unauthorized, "credenciales incorrectas")
}

// Authenticate verifies the credentials and returns the full user with its
// roles on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errBadCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, errBadCredentials()
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, errBadCredentials()
	}
	return u, nil
}

// LoadUser resolves a session-carried identifier back to the user record.
func (s *Service) LoadUser(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, apperr.New(apperr.Unauthorized, "sesión inválida")
	}
	return s.users.GetByID(ctx, id)
}

// Register creates an account with a hashed password and the given roles.
func (s *Service) Register(ctx context.Context, u *User, password string, roles ...string) (int64, error) {
	if u.GivenName == "" {
		return 0, apperr.Validationf("nombre es requerido")
	}
	if u.Email == "" {
		return 0, apperr.Validationf("correo es requerido")
	}
	if len(roles) == 0 {
		return 0, apperr.Validationf("al menos un rol es requerido")
	}
	if u.Sex != "" && !ValidSex(u.Sex) {
		return 0, apperr.Validationf("sexo inválido: %s", u.Sex)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, apperr.Wrap(apperr.Validation, "contraseña inválida", err)
	}
	u.PasswordHash = hash

	id, err := s.users.CreateWithRoles(ctx, u, roles...)
	if err != nil {
		return 0, err
	}
	u.Roles = roles
	return id, nil
}
