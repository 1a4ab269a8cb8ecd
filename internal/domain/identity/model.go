package identity

import (
	"strings"
	"time"
)

// Sex values accepted for usuarios.sexo.
const (
	SexMale   = "masculino"
	SexFemale = "femenino"
	SexOther  = "otro"
)

// ValidSex reports whether s is one of the accepted sex values.
func ValidSex(s string) bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// User maps to the usuarios table. A user holding the paciente role IS the
// patient record; there is no separate patient table.
type User struct {
	ID               int64      `db:"id_usuario" json:"id"`
	GivenName        string     `db:"nombre" json:"nombre"`
	PaternalSurname  string     `db:"apellido_paterno" json:"apellido_paterno"`
	MaternalSurname  *string    `db:"apellido_materno" json:"apellido_materno,omitempty"`
	CURP             string     `db:"curp" json:"curp"`
	NSS              *string    `db:"nss" json:"nss,omitempty"`
	BirthDate        *time.Time `db:"fecha_nacimiento" json:"fecha_nacimiento,omitempty"`
	Sex              string     `db:"sexo" json:"sexo"`
	MaritalStatus    *string    `db:"estado_civil" json:"estado_civil,omitempty"`
	Street           *string    `db:"calle" json:"calle,omitempty"`
	ExteriorNumber   *string    `db:"numero_exterior" json:"numero_exterior,omitempty"`
	InteriorNumber   *string    `db:"numero_interior" json:"numero_interior,omitempty"`
	Neighborhood     *string    `db:"colonia" json:"colonia,omitempty"`
	PostalCode       *string    `db:"codigo_postal" json:"codigo_postal,omitempty"`
	City             *string    `db:"ciudad" json:"ciudad,omitempty"`
	State            *string    `db:"estado" json:"estado,omitempty"`
	Country          *string    `db:"pais" json:"pais,omitempty"`
	Phone            *string    `db:"telefono" json:"telefono,omitempty"`
	Email            string     `db:"correo" json:"correo"`
	EmergencyContact *string    `db:"contacto_emergencia" json:"contacto_emergencia,omitempty"`
	BloodType        *string    `db:"tipo_sangre" json:"tipo_sangre,omitempty"`
	HeightCM         *float64   `db:"altura" json:"altura,omitempty"`
	WeightKG         *float64   `db:"peso" json:"peso,omitempty"`
	Insurance        *string    `db:"seguro_medico" json:"seguro_medico,omitempty"`
	PasswordHash     string     `db:"contrasena_hash" json:"-"`
	Roles            []string   `db:"-" json:"roles,omitempty"`
	CreatedAt        time.Time  `db:"creado_en" json:"creado_en"`
	UpdatedAt        time.Time  `db:"actualizado_en" json:"actualizado_en"`
}

// FullName composes nombre + apellido paterno + apellido materno, skipping
// empty parts.
func (u *User) FullName() string {
	parts := []string{u.GivenName, u.PaternalSurname}
	if u.MaternalSurname != nil {
		parts = append(parts, *u.MaternalSurname)
	}
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
