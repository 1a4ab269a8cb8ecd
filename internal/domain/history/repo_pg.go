package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinica-benavides/expedientes/internal/apperr"
	"github.com/clinica-benavides/expedientes/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates a Postgres-backed history repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) GetByPatient(ctx context.Context, patientID int64) (*ClinicalHistory, error) {
	var (
		h      ClinicalHistory
		packed string
	)
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT patient_id, tipo_sangre, altura, peso, seguro_medico,
			medicamento_actual, antecedentes_personales, antecedentes_familiares,
			antecedentes_quirurgicos, diagnosticos, actualizado_por, actualizado_en
		FROM clinical_histories
		WHERE patient_id = $1`, patientID).Scan(
		&h.PatientID, &h.BloodType, &h.HeightCM, &h.WeightKG, &h.Insurance,
		&packed, &h.PersonalAntecedents, &h.FamilyAntecedents,
		&h.SurgicalAntecedents, &h.Diagnoses, &h.UpdatedBy, &h.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err, "historial no encontrado")
	}
	h.Medications = ParseMedications(packed)
	return &h, nil
}

// sectionColumns maps a variant to the columns it may touch and their values,
// in declaration order.
func sectionColumns(upd SectionUpdate) ([]string, []interface{}) {
	switch u := upd.(type) {
	case GeneralData:
		return []string{"tipo_sangre", "altura", "peso", "seguro_medico"},
			[]interface{}{u.BloodType, u.HeightCM, u.WeightKG, u.Insurance}
	case MedicationUpdate:
		return []string{"medicamento_actual"}, []interface{}{PackMedications(u.Medications)}
	case PersonalAntecedents:
		return []string{"antecedentes_personales"}, []interface{}{u.Text}
	case FamilyAntecedents:
		return []string{"antecedentes_familiares"}, []interface{}{u.Text}
	case SurgicalAntecedents:
		return []string{"antecedentes_quirurgicos"}, []interface{}{u.Text}
	case Diagnoses:
		return []string{"diagnosticos"}, []interface{}{u.Text}
	}
	return nil, nil
}

func (r *repoPG) Upsert(ctx context.Context, patientID int64, upd SectionUpdate, clinicianID int64) error {
	cols, vals := sectionColumns(upd)
	if len(cols) == 0 {
		return apperr.Validationf("sección desconocida")
	}

	placeholders := make([]string, 0, len(cols))
	assignments := make([]string, 0, len(cols))
	for i, col := range cols {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	clinicianArg := fmt.Sprintf("$%d", len(cols)+2)

	// The unique constraint on patient_id makes first-write creation atomic:
	// concurrent updates for the same absent patient settle on one row.
	sql := fmt.Sprintf(`
		INSERT INTO clinical_histories (patient_id, %s, actualizado_por, actualizado_en)
		VALUES ($1, %s, %s, now())
		ON CONFLICT (patient_id) DO UPDATE SET
			%s, actualizado_por = EXCLUDED.actualizado_por, actualizado_en = now()`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), clinicianArg,
		strings.Join(assignments, ", "))

	args := make([]interface{}, 0, len(vals)+2)
	args = append(args, patientID)
	args = append(args, vals...)
	args = append(args, clinicianID)

	return db.RunInTx(ctx, r.pool, func(txCtx context.Context) error {
		if _, err := r.conn(txCtx).Exec(txCtx, sql, args...); err != nil {
			return mapPgError(err, "historial no encontrado")
		}
		_, err := r.conn(txCtx).Exec(txCtx, `
			INSERT INTO history_audit (id, patient_id, clinician_id, seccion, descripcion, creado_en)
			VALUES ($1, $2, $3, $4, $5, now())`,
			uuid.New(), patientID, clinicianID, upd.Section(),
			fmt.Sprintf("actualización de sección %s", upd.Section()))
		if err != nil {
			return mapPgError(err, "historial no encontrado")
		}
		return nil
	})
}

func (r *repoPG) ListAudit(ctx context.Context, patientID int64) ([]AuditEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, clinician_id, seccion, descripcion, creado_en
		FROM history_audit
		WHERE patient_id = $1
		ORDER BY creado_en DESC`, patientID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.ClinicianID, &e.Section,
			&e.Description, &e.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
	}
	return entries, nil
}

func mapPgError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.NotFound, notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return apperr.Wrap(apperr.Conflict, "el registro ya existe", err)
		case "23503": // foreign_key_violation
			return apperr.Wrap(apperr.NotFound, notFoundMsg, err)
		}
	}
	return apperr.Wrap(apperr.Internal, "error interno del servidor", err)
}
