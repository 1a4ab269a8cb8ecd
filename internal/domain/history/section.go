package history

import (
	"encoding/json"
	"strings"

	"github.com/clinica-benavides/expedientes/internal/apperr"
)

// Section tags accepted by the update endpoint.
const (
	SectionGeneralData         = "general-data"
	SectionMedication          = "medication"
	SectionPersonalAntecedents = "personal-antecedents"
	SectionFamilyAntecedents   = "family-antecedents"
	SectionSurgicalAntecedents = "surgical-antecedents"
	SectionDiagnoses           = "diagnoses"
)

// SectionUpdate is a sealed tagged variant: one concrete type per history
// section, each carrying only its own payload.
type SectionUpdate interface {
	// Section returns the wire tag of the addressed section.
	Section() string
	sealed()
}

// GeneralData updates the general clinical snapshot fields.
type GeneralData struct {
	BloodType *string  `json:"tipo_sangre"`
	HeightCM  *float64 `json:"altura"`
	WeightKG  *float64 `json:"peso"`
	Insurance *string  `json:"seguro_medico"`
}

// MedicationUpdate replaces the current-medication list.
type MedicationUpdate struct {
	Medications []Medication `json:"medicamentos"`
}

// PersonalAntecedents replaces the personal-antecedents free text.
type PersonalAntecedents struct {
	Text string `json:"texto"`
}

// FamilyAntecedents replaces the family-antecedents free text.
type FamilyAntecedents struct {
	Text string `json:"texto"`
}

// SurgicalAntecedents replaces the surgical-antecedents free text.
type SurgicalAntecedents struct {
	Text string `json:"texto"`
}

// Diagnoses replaces the current-diagnoses free text.
type Diagnoses struct {
	Text string `json:"texto"`
}

func (GeneralData) Section() string         { return SectionGeneralData }
func (MedicationUpdate) Section() string    { return SectionMedication }
func (PersonalAntecedents) Section() string { return SectionPersonalAntecedents }
func (FamilyAntecedents) Section() string   { return SectionFamilyAntecedents }
func (SurgicalAntecedents) Section() string { return SectionSurgicalAntecedents }
func (Diagnoses) Section() string           { return SectionDiagnoses }

func (GeneralData) sealed()         {}
func (MedicationUpdate) sealed()    {}
func (PersonalAntecedents) sealed() {}
func (FamilyAntecedents) sealed()   {}
func (SurgicalAntecedents) sealed() {}
func (Diagnoses) sealed()           {}

// ParseSectionUpdate decodes the datos payload for the named section into its
// variant. Unknown tags and malformed payloads come back as Validation errors.
func ParseSectionUpdate(section string, raw json.RawMessage) (SectionUpdate, error) {
	switch section {
	case SectionGeneralData:
		var upd GeneralData
		if err := unmarshalPayload(raw, &upd); err != nil {
			return nil, err
		}
		return upd, nil
	case SectionMedication:
		var upd MedicationUpdate
		if err := unmarshalPayload(raw, &upd); err != nil {
			return nil, err
		}
		return upd, nil
	case SectionPersonalAntecedents:
		text, err := parseText(raw)
		if err != nil {
			return nil, err
		}
		return PersonalAntecedents{Text: text}, nil
	case SectionFamilyAntecedents:
		text, err := parseText(raw)
		if err != nil {
			return nil, err
		}
		return FamilyAntecedents{Text: text}, nil
	case SectionSurgicalAntecedents:
		text, err := parseText(raw)
		if err != nil {
			return nil, err
		}
		return SurgicalAntecedents{Text: text}, nil
	case SectionDiagnoses:
		text, err := parseText(raw)
		if err != nil {
			return nil, err
		}
		return Diagnoses{Text: text}, nil
	default:
		return nil, apperr.Validationf("sección desconocida: %s", section)
	}
}

func unmarshalPayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return apperr.Validationf("datos es requerido")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Wrap(apperr.Validation, "datos inválidos", err)
	}
	return nil
}

// parseText accepts either a bare JSON string or an object {"texto": "..."}.
func parseText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", apperr.Validationf("datos es requerido")
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", apperr.Wrap(apperr.Validation, "datos inválidos", err)
		}
		return s, nil
	}
	var obj struct {
		Text string `json:"texto"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", apperr.Wrap(apperr.Validation, "datos inválidos", err)
	}
	return obj.Text, nil
}
