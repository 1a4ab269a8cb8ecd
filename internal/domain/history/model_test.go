package history

import (
	"reflect"
	"testing"
)

func TestMedication_PackRoundTrip(t *testing.T) {
	m := Medication{Name: "Metformina", Dose: "850mg", Frequency: "cada 12h", Route: "oral"}
	packed := m.Pack()
	if packed != "Metformina|850mg|cada 12h|oral" {
		t.Fatalf("packed = %q", packed)
	}
	if got := ParseMedication(packed); got != m {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}
}

func TestParseMedication_MissingFields(t *testing.T) {
	got := ParseMedication("Paracetamol|500mg")
	want := Medication{Name: "Paracetamol", Dose: "500mg"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPackMedications_List(t *testing.T) {
	meds := []Medication{
		{Name: "Metformina", Dose: "850mg", Frequency: "cada 12h", Route: "oral"},
		{Name: "Losartán", Dose: "50mg", Frequency: "cada 24h", Route: "oral"},
	}
	packed := PackMedications(meds)
	if got := ParseMedications(packed); !reflect.DeepEqual(got, meds) {
		t.Errorf("round trip = %+v, want %+v", got, meds)
	}
}

func TestParseMedications_SkipsBlankLines(t *testing.T) {
	got := ParseMedications("Metformina|850mg|cada 12h|oral\n\n  \n")
	if len(got) != 1 || got[0].Name != "Metformina" {
		t.Errorf("got %+v", got)
	}
}

func TestParseMedications_Empty(t *testing.T) {
	if got := ParseMedications(""); got != nil {
		t.Errorf("expected nil for empty storage, got %+v", got)
	}
}
