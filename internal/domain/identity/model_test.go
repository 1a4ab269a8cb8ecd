package identity

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestUser_FullName(t *testing.T) {
	cases := []struct {
		name string
		u    User
		want string
	}{
		{
			"all parts",
			User{GivenName: "Wendy Lizeth", PaternalSurname: "Rascón", MaternalSurname: strPtr("Chávez")},
			"Wendy Lizeth Rascón Chávez",
		},
		{
			"no maternal surname",
			User{GivenName: "José", PaternalSurname: "Ramírez"},
			"José Ramírez",
		},
		{
			"empty maternal surname",
			User{GivenName: "Ethan", PaternalSurname: "Zavala", MaternalSurname: strPtr("")},
			"Ethan Zavala",
		},
	}
	for _, tc := range cases {
		if got := tc.u.FullName(); got != tc.want {
			t.Errorf("%s: FullName() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUser_PasswordHashNeverMarshaled(t *testing.T) {
	u := User{GivenName: "Ana", Email: "ana@benavides.com", PasswordHash: "$2a$10$secret"}
	data, err := json.Marshal(&u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("password hash leaked in JSON: %s", data)
	}
}

func TestValidSex(t *testing.T) {
	for _, s := range []string{SexMale, SexFemale, SexOther} {
		if !ValidSex(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "Masculino", "x"} {
		if ValidSex(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestUser_HasRole(t *testing.T) {
	u := User{Roles: []string{"doctor", "administrativo"}}
	if !u.HasRole("doctor") {
		t.Error("expected doctor role")
	}
	if u.HasRole("paciente") {
		t.Error("did not expect paciente role")
	}
}
