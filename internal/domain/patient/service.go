package patient

import (
	"context"
	"strings"
	"time"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/internal/platform/auth"
)

// Service provides patient listing, lookup, search, edit and registration.
type Service struct {
	patients Repository
	// tempPassword is the initial credential given to newly registered
	// patients; they change it on first login.
	tempPassword string
	now          func() time.Time
}

// NewService creates a new patient service. tempPassword is the initial
// password assigned on registration.
func NewService(patients Repository, tempPassword string) *Service {
	return &Service{patients: patients, tempPassword: tempPassword, now: time.Now}
}

// List returns all patients with the derived fields populated.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	records, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	s.deriveAll(records)
	return records, nil
}

// Get returns one patient by internal id.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.derive(s.now())
	return rec, nil
}

// Search filters patients by a substring over name, paternal surname, CURP
// and phone. An empty or blank term returns the full list.
func (s *Service) Search(ctx context.Context, term string) ([]*Record, error) {
	records, err := s.patients.Search(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, err
	}
	s.deriveAll(records)
	return records, nil
}

// Update overwrites the full field set of an existing patient.
func (s *Service) Update(ctx context.Context, id int64, f *Fields) error {
	if err := validateFields(f); err != nil {
		return err
	}
	return s.patients.Update(ctx, id, f)
}

// Register creates a new patient with the temporary password and returns the
// new internal id.
func (s *Service) Register(ctx context.Context, f *Fields) (int64, error) {
	if err := validateFields(f); err != nil {
		return 0, err
	}
	hash, err := auth.HashPassword(s.tempPassword)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
	}
	return s.patients.Create(ctx, f, hash)
}

func (s *Service) deriveAll(records []*Record) {
	today := s.now()
	for _, rec := range records {
		rec.derive(today)
	}
}

func validateFields(f *Fields) error {
	if strings.TrimSpace(f.GivenName) == "" {
		return apperr.Validationf("nombre es requerido")
	}
	if strings.TrimSpace(f.PaternalSurname) == "" {
		return apperr.Validationf("apellido_paterno es requerido")
	}
	if strings.TrimSpace(f.CURP) == "" {
		return apperr.Validationf("curp es requerido")
	}
	if f.BirthDate == nil {
		return apperr.Validationf("fecha_nacimiento es requerida")
	}
	if strings.TrimSpace(f.Email) == "" {
		return apperr.Validationf("correo es requerido")
	}
	if f.Sex == "" {
		return apperr.Validationf("sexo es requerido")
	}
	switch f.Sex {
	case "masculino", "femenino", "otro":
	default:
		return apperr.Validationf("sexo inválido: %s", f.Sex)
	}
	return nil
}
