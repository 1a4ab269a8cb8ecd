package patient

import "context"

// Repository gives access to patient records stored in the usuarios table.
type Repository interface {
	// List returns every user holding the paciente role.
	List(ctx context.Context) ([]*Record, error)
	// Get returns a single record by internal id.
	Get(ctx context.Context, id int64) (*Record, error)
	// Search filters the patient list by a case-sensitive substring over
	// nombre, apellido_paterno, curp and telefono. An empty term matches
	// everything.
	Search(ctx context.Context, term string) ([]*Record, error)
	// Update overwrites the full recognized field set of an existing patient.
	Update(ctx context.Context, id int64, f *Fields) error
	// Create inserts a new patient with the given credential hash and links
	// the paciente role, atomically. Returns the new internal id.
	Create(ctx context.Context, f *Fields, passwordHash string) (int64, error)
}
