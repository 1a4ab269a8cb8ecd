package history

import (
	"context"
	"strings"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/pkg/patientid"
)

// Service provides clinical history reads and section updates.
type Service struct {
	histories Repository
}

// NewService creates a new history service.
func NewService(histories Repository) *Service {
	return &Service{histories: histories}
}

// Get returns the patient's clinical history.
func (s *Service) Get(ctx context.Context, patientID int64) (*ClinicalHistory, error) {
	h, err := s.histories.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	h.PatientRef = patientid.Format(h.PatientID)
	return h, nil
}

// UpdateSection applies one section update on behalf of the clinician. The
// history row is created on first update; every update is audited.
func (s *Service) UpdateSection(ctx context.Context, patientID int64, upd SectionUpdate, clinicianID int64) error {
	if patientID <= 0 {
		return apperr.Validationf("paciente_id inválido")
	}
	if clinicianID <= 0 {
		return apperr.Unauthorizedf("sesión inválida")
	}
	if err := validateUpdate(upd); err != nil {
		return err
	}
	return s.histories.Upsert(ctx, patientID, upd, clinicianID)
}

// Audit returns the patient's update trail, newest first.
func (s *Service) Audit(ctx context.Context, patientID int64) ([]AuditEntry, error) {
	entries, err := s.histories.ListAudit(ctx, patientID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].PatientRef = patientid.Format(entries[i].PatientID)
	}
	return entries, nil
}

// validateUpdate checks the payload shape. Empty free text is allowed: it
// clears the section.
func validateUpdate(upd SectionUpdate) error {
	switch u := upd.(type) {
	case nil:
		return apperr.Validationf("datos es requerido")
	case GeneralData:
		if u.BloodType == nil && u.HeightCM == nil && u.WeightKG == nil && u.Insurance == nil {
			return apperr.Validationf("datos generales vacíos")
		}
		if u.HeightCM != nil && *u.HeightCM <= 0 {
			return apperr.Validationf("altura inválida")
		}
		if u.WeightKG != nil && *u.WeightKG <= 0 {
			return apperr.Validationf("peso inválido")
		}
	case MedicationUpdate:
		for _, m := range u.Medications {
			if strings.TrimSpace(m.Name) == "" {
				return apperr.Validationf("medicamento sin nombre")
			}
			if strings.Contains(m.Pack(), "\n") {
				return apperr.Validationf("medicamento con salto de línea")
			}
		}
	}
	return nil
}
