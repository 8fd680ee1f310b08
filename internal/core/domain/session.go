package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies which slice of the operation a user works in. The role
// drives both broadcast filtering and insight synthesis.
type Role string

const (
	RoleDriver           Role = "driver"
	RoleWarehouseStaff   Role = "warehouse_staff"
	RoleLogisticsManager Role = "logistics_manager"
	RoleBusinessOwner    Role = "business_owner"
)

// KnownRole reports whether r is one of the roles the subsystem understands.
// Unknown roles are still admitted; they simply match no role-gated rules.
func KnownRole(r Role) bool {
	switch r {
	case RoleDriver, RoleWarehouseStaff, RoleLogisticsManager, RoleBusinessOwner:
		return true
	}
	return false
}

// Identity is bound to a session once it authenticates.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// SessionSnapshot is a point-in-time, read-only copy of a session's
// filter-relevant fields. The registry hands these out so the scheduler and
// the filters never see a half-applied control-message mutation.
type SessionSnapshot struct {
	ID           uuid.UUID
	Identity     *Identity
	Regions      []string
	LastActivity time.Time
}

// Authenticated reports whether an identity has been bound to the session.
func (s SessionSnapshot) Authenticated() bool {
	return s.Identity != nil
}

// Role returns the session's role, or the empty role before authentication.
func (s SessionSnapshot) Role() Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}
