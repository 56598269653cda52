package identity

import (
	"github.com/google/uuid"
)

// Role distinguishes the three parties acting on an order
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated principal performing an operation.
// Identity management itself lives outside this service; the actor arrives
// resolved from the JWT on every request.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// NewActor creates an actor with the given identity and role
func NewActor(userID uuid.UUID, role Role) Actor {
	return Actor{UserID: userID, Role: role}
}

// IsAdmin returns true for platform administrators
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsBuyer returns true for buyers
func (a Actor) IsBuyer() bool {
	return a.Role == RoleBuyer
}

// IsSupplier returns true for suppliers
func (a Actor) IsSupplier() bool {
	return a.Role == RoleSupplier
}
