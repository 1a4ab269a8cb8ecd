package patient

import (
	"strings"
	"time"

	"github.com/clinica-benavides/expedientes/pkg/patientid"
)

// DateLayout is the wire format for birth dates, matching HTML date inputs.
const DateLayout = "2006-01-02"

// Record is the patient view of a usuarios row plus the fields derived at
// read time: edad, nombre_completo, direccion and the external id.
type Record struct {
	ID               int64      `json:"-"`
	ExternalID       string     `json:"id"`
	GivenName        string     `json:"nombre"`
	PaternalSurname  string     `json:"apellido_paterno"`
	MaternalSurname  *string    `json:"apellido_materno,omitempty"`
	FullName         string     `json:"nombre_completo"`
	CURP             string     `json:"curp"`
	NSS              *string    `json:"nss,omitempty"`
	BirthDate        *time.Time `json:"-"`
	BirthDateISO     string     `json:"fecha_nacimiento,omitempty"`
	Age              *int       `json:"edad,omitempty"`
	Sex              string     `json:"sexo"`
	MaritalStatus    *string    `json:"estado_civil,omitempty"`
	Street           *string    `json:"calle,omitempty"`
	ExteriorNumber   *string    `json:"numero_exterior,omitempty"`
	InteriorNumber   *string    `json:"numero_interior,omitempty"`
	Neighborhood     *string    `json:"colonia,omitempty"`
	PostalCode       *string    `json:"codigo_postal,omitempty"`
	City             *string    `json:"ciudad,omitempty"`
	State            *string    `json:"estado,omitempty"`
	Country          *string    `json:"pais,omitempty"`
	Phone            *string    `json:"telefono,omitempty"`
	Email            string     `json:"correo"`
	EmergencyContact *string    `json:"contacto_emergencia,omitempty"`
	BloodType        *string    `json:"tipo_sangre,omitempty"`
	HeightCM         *float64   `json:"altura,omitempty"`
	WeightKG         *float64   `json:"peso,omitempty"`
	Insurance        *string    `json:"seguro_medico,omitempty"`
	Address          string     `json:"direccion,omitempty"`
}

// Summary is the compact shape served by /api/pacientes.
type Summary struct {
	ID           string `json:"id"`
	FullName     string `json:"nombre_completo"`
	CURP         string `json:"curp"`
}

// Fields is the recognized field set for create and full-overwrite update.
// Updates always write the whole set; absent optional fields become NULL.
type Fields struct {
	GivenName        string
	PaternalSurname  string
	MaternalSurname  *string
	CURP             string
	NSS              *string
	BirthDate        *time.Time
	Sex              string
	MaritalStatus    *string
	Street           *string
	ExteriorNumber   *string
	InteriorNumber   *string
	Neighborhood     *string
	PostalCode       *string
	City             *string
	State            *string
	Country          *string
	Phone            *string
	Email            string
	EmergencyContact *string
	BloodType        *string
	HeightCM         *float64
	WeightKG         *float64
	Insurance        *string
}

// AgeAt computes whole years between birth and today, not counting the
// current year until the birth month/day has passed.
func AgeAt(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	return years
}

// derive fills the computed fields. Age stays nil when the birth date is
// unknown; it is never stored.
func (r *Record) derive(today time.Time) {
	r.ExternalID = patientid.Format(r.ID)
	r.FullName = composeFullName(r.GivenName, r.PaternalSurname, r.MaternalSurname)
	r.Address = composeAddress(r.Street, r.ExteriorNumber, r.InteriorNumber, r.Neighborhood)
	if r.BirthDate != nil {
		age := AgeAt(*r.BirthDate, today)
		r.Age = &age
		r.BirthDateISO = r.BirthDate.Format(DateLayout)
	}
}

// Summary projects the record into its compact listing shape.
func (r *Record) Summary() Summary {
	return Summary{ID: r.ExternalID, FullName: r.FullName, CURP: r.CURP}
}

func composeFullName(given, paternal string, maternal *string) string {
	parts := []string{given, paternal}
	if maternal != nil {
		parts = append(parts, *maternal)
	}
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// composeAddress renders "calle numero_exterior [numero_interior], colonia",
// dropping whatever parts are missing.
func composeAddress(street, extNo, intNo, neighborhood *string) string {
	var line []string
	for _, p := range []*string{street, extNo, intNo} {
		if p != nil && *p != "" {
			line = append(line, *p)
		}
	}
	addr := strings.Join(line, " ")
	if neighborhood != nil && *neighborhood != "" {
		if addr != "" {
			addr += ", "
		}
		addr += *neighborhood
	}
	return addr
}
