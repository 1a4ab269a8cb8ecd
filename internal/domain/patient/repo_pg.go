package patient

import (
	"context"
	"errors"

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

// NewRepoPG creates a Postgres-backed patient repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `u.id_usuario, u.nombre, u.apellido_paterno, u.apellido_materno,
	u.curp, u.nss, u.fecha_nacimiento, u.sexo, u.estado_civil, u.calle,
	u.numero_exterior, u.numero_interior, u.colonia, u.codigo_postal, u.ciudad,
	u.estado, u.pais, u.telefono, u.correo, u.contacto_emergencia, u.tipo_sangre,
	u.altura, u.peso, u.seguro_medico`

// rows holding the paciente role, ordered for stable listings
const patientBase = `
	FROM usuarios u
	JOIN usuario_roles ur ON ur.id_usuario = u.id_usuario
	JOIN roles ro ON ro.id_rol = ur.id_rol
	WHERE ro.nombre_rol = 'paciente'`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.GivenName, &rec.PaternalSurname, &rec.MaternalSurname,
		&rec.CURP, &rec.NSS, &rec.BirthDate, &rec.Sex, &rec.MaritalStatus,
		&rec.Street, &rec.ExteriorNumber, &rec.InteriorNumber, &rec.Neighborhood,
		&rec.PostalCode, &rec.City, &rec.State, &rec.Country, &rec.Phone, &rec.Email,
		&rec.EmergencyContact, &rec.BloodType, &rec.HeightCM, &rec.WeightKG, &rec.Insurance)
	return &rec, err
}

func (r *repoPG) List(ctx context.Context) ([]*Record, error) {
	return r.queryRecords(ctx,
		`SELECT `+patientCols+patientBase+` ORDER BY u.apellido_paterno, u.nombre`)
}

func (r *repoPG) Search(ctx context.Context, term string) ([]*Record, error) {
	if term == "" {
		return r.List(ctx)
	}
	pattern := "%" + term + "%"
	return r.queryRecords(ctx,
		`SELECT `+patientCols+patientBase+`
		AND (u.nombre LIKE $1 OR u.apellido_paterno LIKE $1 OR u.curp LIKE $1 OR u.telefono LIKE $1)
		ORDER BY u.apellido_paterno, u.nombre`, pattern)
}

func (r *repoPG) queryRecords(ctx context.Context, sql string, args ...interface{}) ([]*Record, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
	}
	return records, nil
}

func (r *repoPG) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM usuarios u WHERE u.id_usuario = $1`, id))
	if err != nil {
		return nil, mapPgError(err, "paciente no encontrado")
	}
	return rec, nil
}

func (r *repoPG) Update(ctx context.Context, id int64, f *Fields) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE usuarios SET
			nombre = $1, apellido_paterno = $2, apellido_materno = $3, curp = $4,
			nss = $5, fecha_nacimiento = $6, sexo = $7, estado_civil = $8,
			calle = $9, numero_exterior = $10, numero_interior = $11, colonia = $12,
			codigo_postal = $13, ciudad = $14, estado = $15, pais = $16,
			telefono = $17, correo = $18, contacto_emergencia = $19,
			tipo_sangre = $20, altura = $21, peso = $22, seguro_medico = $23,
			actualizado_en = now()
		WHERE id_usuario = $24`,
		f.GivenName, f.PaternalSurname, f.MaternalSurname, f.CURP, f.NSS,
		f.BirthDate, f.Sex, f.MaritalStatus, f.Street, f.ExteriorNumber,
		f.InteriorNumber, f.Neighborhood, f.PostalCode, f.City, f.State, f.Country,
		f.Phone, f.Email, f.EmergencyContact, f.BloodType, f.HeightCM, f.WeightKG,
		f.Insurance, id)
	if err != nil {
		return mapPgError(err, "paciente no encontrado")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("paciente no encontrado")
	}
	return nil
}

func (r *repoPG) Create(ctx context.Context, f *Fields, passwordHash string) (int64, error) {
	var id int64
	err := db.RunInTx(ctx, r.pool, func(txCtx context.Context) error {
		row := r.conn(txCtx).QueryRow(txCtx, `
			INSERT INTO usuarios (nombre, apellido_paterno, apellido_materno, curp, nss,
				fecha_nacimiento, sexo, estado_civil, calle, numero_exterior,
				numero_interior, colonia, codigo_postal, ciudad, estado, pais,
				telefono, correo, contacto_emergencia, tipo_sangre, altura, peso,
				seguro_medico, contrasena_hash)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
			RETURNING id_usuario`,
			f.GivenName, f.PaternalSurname, f.MaternalSurname, f.CURP, f.NSS,
			f.BirthDate, f.Sex, f.MaritalStatus, f.Street, f.ExteriorNumber,
			f.InteriorNumber, f.Neighborhood, f.PostalCode, f.City, f.State, f.Country,
			f.Phone, f.Email, f.EmergencyContact, f.BloodType, f.HeightCM, f.WeightKG,
			f.Insurance, passwordHash)
		if err := row.Scan(&id); err != nil {
			return mapPgError(err, "paciente no encontrado")
		}
		tag, err := r.conn(txCtx).Exec(txCtx, `
			INSERT INTO usuario_roles (id_usuario, id_rol)
			SELECT $1, id_rol FROM roles WHERE nombre_rol = 'paciente'`, id)
		if err != nil {
			return mapPgError(err, "paciente no encontrado")
		}
		if tag.RowsAffected() == 0 {
			return apperr.Internalf("rol paciente no existe")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
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
