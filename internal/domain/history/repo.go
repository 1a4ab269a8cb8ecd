package history

import "context"

// Repository gives access to clinical histories and their audit trail.
type Repository interface {
	// GetByPatient returns the patient's history row or apperr.NotFound.
	GetByPatient(ctx context.Context, patientID int64) (*ClinicalHistory, error)
	// Upsert applies one section update, creating the history row on first
	// write, and appends the audit entry in the same transaction. Only the
	// addressed section's columns change.
	Upsert(ctx context.Context, patientID int64, upd SectionUpdate, clinicianID int64) error
	// ListAudit returns the patient's audit entries newest first.
	ListAudit(ctx context.Context, patientID int64) ([]AuditEntry, error)
}
