package identity

import "context"

// Repository defines account lookup and creation for the identity domain.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// CreateWithRoles inserts the user and its role links in one
	// transaction and returns the new id.
	CreateWithRoles(ctx context.Context, u *User, roles ...string) (int64, error)
	AssignRole(ctx context.Context, userID int64, role string) error
	RolesOf(ctx context.Context, userID int64) ([]string, error)
}
