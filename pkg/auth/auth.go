package auth

import (
	"context"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// IsStaff reports whether r passes staff-or-admin checks.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type Identity struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

// CanAccess is true for the owner of a resource and for staff.
func (i Identity) CanAccess(owner uuid.UUID) bool {
	return i.UserID == owner || i.Role.IsStaff()
}

type ctxKey struct{}

func SetAuthContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ctxKey{}).(Identity)
	return identity, ok
}
