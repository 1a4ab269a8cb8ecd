package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClinicalHistory is the single history row a patient accumulates. Sections
// are updated independently; the row records who touched it last and when.
type ClinicalHistory struct {
	PatientID           int64        `json:"-"`
	PatientRef          string       `json:"paciente_id"`
	BloodType           *string      `json:"tipo_sangre,omitempty"`
	HeightCM            *float64     `json:"altura,omitempty"`
	WeightKG            *float64     `json:"peso,omitempty"`
	Insurance           *string      `json:"seguro_medico,omitempty"`
	Medications         []Medication `json:"medicamento_actual"`
	PersonalAntecedents string       `json:"antecedentes_personales"`
	FamilyAntecedents   string       `json:"antecedentes_familiares"`
	SurgicalAntecedents string       `json:"antecedentes_quirurgicos"`
	Diagnoses           string       `json:"diagnosticos_actuales"`
	UpdatedBy           int64        `json:"actualizado_por"`
	UpdatedAt           time.Time    `json:"actualizado_en"`
}

// AuditEntry records one section update: who, what section, when.
type AuditEntry struct {
	ID          uuid.UUID `json:"id"`
	PatientID   int64     `json:"-"`
	PatientRef  string    `json:"paciente_id"`
	ClinicianID int64     `json:"clinico_id"`
	Section     string    `json:"seccion"`
	Description string    `json:"descripcion"`
	CreatedAt   time.Time `json:"fecha"`
}

// Medication is one entry of the current-medication list. In storage the
// list is packed one medication per line as name|dose|frequency|route.
type Medication struct {
	Name      string `json:"nombre"`
	Dose      string `json:"dosis"`
	Frequency string `json:"frecuencia"`
	Route     string `json:"via"`
}

const medSep = "|"

// Pack renders the medication in its storage form.
func (m Medication) Pack() string {
	return strings.Join([]string{m.Name, m.Dose, m.Frequency, m.Route}, medSep)
}

// ParseMedication reads one packed line. Missing trailing fields are
// tolerated and come back empty.
func ParseMedication(s string) Medication {
	parts := strings.SplitN(s, medSep, 4)
	var m Medication
	for i, p := range parts {
		p = strings.TrimSpace(p)
		switch i {
		case 0:
			m.Name = p
		case 1:
			m.Dose = p
		case 2:
			m.Frequency = p
		case 3:
			m.Route = p
		}
	}
	return m
}

// PackMedications joins the list one medication per line.
func PackMedications(meds []Medication) string {
	lines := make([]string, 0, len(meds))
	for _, m := range meds {
		lines = append(lines, m.Pack())
	}
	return strings.Join(lines, "\n")
}

// ParseMedications splits packed storage text back into the list, skipping
// blank lines.
func ParseMedications(s string) []Medication {
	var meds []Medication
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		meds = append(meds, ParseMedication(line))
	}
	return meds
}
