package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/internal/config"
	"github.com/clinica-benavides/expedientes/internal/domain/identity"
	"github.com/clinica-benavides/expedientes/internal/domain/patient"
	"github.com/clinica-benavides/expedientes/pkg/patientid"
)

// runSeed creates the demo doctor account and a few sample patients. Rows
// that already exist are skipped so the command can be re-run.
func runSeed(ctx context.Context, pool *pgxpool.Pool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	identitySvc := identity.NewService(identity.NewRepoPG(pool))
	patientSvc := patient.NewService(patient.NewRepoPG(pool), cfg.TempPassword)

	doctor := &identity.User{
		GivenName:       "Ernesto",
		PaternalSurname: "Benavides",
		CURP:            "BEXE800101HCHNRR00",
		Sex:             identity.SexMale,
		Email:           "doctor@benavides.com",
	}
	if _, err := identitySvc.Register(ctx, doctor, "doctor123", "doctor"); err != nil {
		if !apperr.Is(err, apperr.Conflict) {
			return fmt.Errorf("seed doctor: %w", err)
		}
		fmt.Println("doctor account already exists, skipping")
	} else {
		fmt.Println("created doctor account doctor@benavides.com")
	}

	for _, f := range demoPatients() {
		id, err := patientSvc.Register(ctx, f)
		if err != nil {
			if apperr.Is(err, apperr.Conflict) {
				fmt.Printf("patient %s already exists, skipping\n", f.CURP)
				continue
			}
			return fmt.Errorf("seed patient %s: %w", f.CURP, err)
		}
		fmt.Printf("created patient %s (%s %s)\n", patientid.Format(id), f.GivenName, f.PaternalSurname)
	}
	return nil
}

func demoPatients() []*patient.Fields {
	str := func(s string) *string { return &s }
	day := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return []*patient.Fields{
		{
			GivenName:       "Wendy Lizeth",
			PaternalSurname: "Rascón",
			MaternalSurname: str("Chávez"),
			CURP:            "RACW050729MMCSHNA2",
			BirthDate:       day(2005, time.July, 29),
			Sex:             "femenino",
			Phone:           str("6141234567"),
			Email:           "wendy.rascon@example.com",
			City:            str("Chihuahua"),
			State:           str("Chihuahua"),
			Country:         str("México"),
		},
		{
			GivenName:       "Carlos",
			PaternalSurname: "Mendoza",
			MaternalSurname: str("Ortiz"),
			CURP:            "MEOC900315HCHNRR01",
			BirthDate:       day(1990, time.March, 15),
			Sex:             "masculino",
			Phone:           str("6149876543"),
			Email:           "carlos.mendoza@example.com",
			BloodType:       str("O+"),
		},
		{
			GivenName:       "María Fernanda",
			PaternalSurname: "López",
			CURP:            "LOXM851120MCHPRR04",
			BirthDate:       day(1985, time.November, 20),
			Sex:             "femenino",
			Email:           "maria.lopez@example.com",
			Insurance:       str("IMSS"),
		},
	}
}
