package types

import "github.com/m-mizutani/goerr/v2"

// Role represents the access role of a user
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleRiskManager    Role = "risk_manager"
	RoleRiskOwner      Role = "risk_owner"
	RoleRiskIdentifier Role = "risk_identifier"
	RoleAuditor        Role = "auditor"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleRiskManager,
		RoleRiskOwner,
		RoleRiskIdentifier,
		RoleAuditor,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin,
		RoleRiskManager,
		RoleRiskOwner,
		RoleRiskIdentifier,
		RoleAuditor:
		return true
	default:
		return false
	}
}

// CanWrite reports whether the role may create or modify compliance records.
// Auditors have read-only access.
func (r Role) CanWrite() bool {
	return r.IsValid() && r != RoleAuditor
}

func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", goerr.New("invalid role", goerr.V("role", s))
	}
	return role, nil
}
