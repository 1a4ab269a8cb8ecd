package patient

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		today time.Time
		want  int
	}{
		{"birthday already passed this year", date(2005, time.July, 29), date(2025, time.September, 26), 20},
		{"birthday later this year", date(2005, time.July, 29), date(2025, time.March, 1), 19},
		{"same day", date(2000, time.May, 10), date(2025, time.May, 10), 25},
		{"day before birthday", date(2000, time.May, 10), date(2025, time.May, 9), 24},
		{"same month earlier day", date(1990, time.December, 31), date(2025, time.December, 30), 34},
		{"newborn", date(2025, time.January, 1), date(2025, time.June, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeAt(tt.birth, tt.today); got != tt.want {
				t.Errorf("AgeAt(%v, %v) = %d, want %d", tt.birth, tt.today, got, tt.want)
			}
		})
	}
}

func TestRecord_Derive(t *testing.T) {
	maternal := "Chávez"
	street, extNo, colonia := "Av. Juárez", "123", "Centro"
	birth := date(2005, time.July, 29)
	rec := &Record{
		ID:              42,
		GivenName:       "Wendy Lizeth",
		PaternalSurname: "Rascón",
		MaternalSurname: &maternal,
		CURP:            "RACW050729MMCSHNA2",
		BirthDate:       &birth,
		Street:          &street,
		ExteriorNumber:  &extNo,
		Neighborhood:    &colonia,
	}
	rec.derive(date(2025, time.September, 26))

	if rec.ExternalID != "P0000000042" {
		t.Errorf("external id = %q", rec.ExternalID)
	}
	if rec.FullName != "Wendy Lizeth Rascón Chávez" {
		t.Errorf("full name = %q", rec.FullName)
	}
	if rec.Age == nil || *rec.Age != 20 {
		t.Errorf("age = %v, want 20", rec.Age)
	}
	if rec.BirthDateISO != "2005-07-29" {
		t.Errorf("birth date = %q", rec.BirthDateISO)
	}
	if rec.Address != "Av. Juárez 123, Centro" {
		t.Errorf("address = %q", rec.Address)
	}

	sum := rec.Summary()
	if sum.ID != "P0000000042" || sum.FullName != "Wendy Lizeth Rascón Chávez" || sum.CURP != rec.CURP {
		t.Errorf("summary = %+v", sum)
	}
}

func TestRecord_Derive_MissingParts(t *testing.T) {
	rec := &Record{ID: 7, GivenName: "Juan", PaternalSurname: "Pérez"}
	rec.derive(date(2025, time.September, 26))

	if rec.FullName != "Juan Pérez" {
		t.Errorf("full name = %q", rec.FullName)
	}
	if rec.Age != nil {
		t.Errorf("age should stay nil without birth date, got %v", *rec.Age)
	}
	if rec.BirthDateISO != "" {
		t.Errorf("birth date should stay empty, got %q", rec.BirthDateISO)
	}
	if rec.Address != "" {
		t.Errorf("address should stay empty, got %q", rec.Address)
	}
}

func TestComposeAddress(t *testing.T) {
	s := func(v string) *string { return &v }
	tests := []struct {
		name                         string
		street, extNo, intNo, colonia *string
		want                         string
	}{
		{"full", s("Calle 5"), s("10"), s("B"), s("Norte"), "Calle 5 10 B, Norte"},
		{"no interior", s("Calle 5"), s("10"), nil, s("Norte"), "Calle 5 10, Norte"},
		{"only colonia", nil, nil, nil, s("Norte"), "Norte"},
		{"only street", s("Calle 5"), nil, nil, nil, "Calle 5"},
		{"empty strings ignored", s(""), s("10"), nil, s(""), "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := composeAddress(tt.street, tt.extNo, tt.intNo, tt.colonia); got != tt.want {
				t.Errorf("composeAddress = %q, want %q", got, tt.want)
			}
		})
	}
}
