package identity

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

// NewRepoPG creates a Postgres-backed identity repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id_usuario, nombre, apellido_paterno, apellido_materno, curp, nss,
	fecha_nacimiento, sexo, estado_civil, calle, numero_exterior, numero_interior,
	colonia, codigo_postal, ciudad, estado, pais, telefono, correo,
	contacto_emergencia, tipo_sangre, altura, peso, seguro_medico,
	contrasena_hash, creado_en, actualizado_en`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.GivenName, &u.PaternalSurname, &u.MaternalSurname,
		&u.CURP, &u.NSS, &u.BirthDate, &u.Sex, &u.MaritalStatus,
		&u.Street, &u.ExteriorNumber, &u.InteriorNumber, &u.Neighborhood,
		&u.PostalCode, &u.City, &u.State, &u.Country, &u.Phone, &u.Email,
		&u.EmergencyContact, &u.BloodType, &u.HeightCM, &u.WeightKG, &u.Insurance,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM usuarios WHERE id_usuario = $1`, id))
	if err != nil {
		return nil, mapPgError(err, "usuario no encontrado")
	}
	u.Roles, err = r.RolesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM usuarios WHERE correo = $1`, email))
	if err != nil {
		return nil, mapPgError(err, "usuario no encontrado")
	}
	u.Roles, err = r.RolesOf(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repoPG) CreateWithRoles(ctx context.Context, u *User, roles ...string) (int64, error) {
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
			u.GivenName, u.PaternalSurname, u.MaternalSurname, u.CURP, u.NSS,
			u.BirthDate, u.Sex, u.MaritalStatus, u.Street, u.ExteriorNumber,
			u.InteriorNumber, u.Neighborhood, u.PostalCode, u.City, u.State, u.Country,
			u.Phone, u.Email, u.EmergencyContact, u.BloodType, u.HeightCM, u.WeightKG,
			u.Insurance, u.PasswordHash)
		if err := row.Scan(&id); err != nil {
			return mapPgError(err, "usuario no encontrado")
		}
		for _, role := range roles {
			if err := r.assignRole(txCtx, id, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	u.ID = id
	return id, nil
}

func (r *repoPG) AssignRole(ctx context.Context, userID int64, role string) error {
	return r.assignRole(ctx, userID, role)
}

func (r *repoPG) assignRole(ctx context.Context, userID int64, role string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO usuario_roles (id_usuario, id_rol)
		SELECT $1, id_rol FROM roles WHERE nombre_rol = $2
		ON CONFLICT DO NOTHING`, userID, role)
	if err != nil {
		return mapPgError(err, "usuario no encontrado")
	}
	if tag.RowsAffected() == 0 {
		// Zero rows with no conflict means the role name does not exist.
		var exists bool
		if scanErr := r.conn(ctx).QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM roles WHERE nombre_rol = $1)`, role).Scan(&exists); scanErr == nil && !exists {
			return apperr.Validationf("rol desconocido: %s", role)
		}
	}
	return nil
}

func (r *repoPG) RolesOf(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.nombre_rol
		FROM roles r
		JOIN usuario_roles ur ON ur.id_rol = r.id_rol
		WHERE ur.id_usuario = $1
		ORDER BY r.nombre_rol`, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error interno del servidor", err)
	}
	return roles, nil
}

// mapPgError translates driver errors into the shared taxonomy so callers
// never have to inspect pg error codes.
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
