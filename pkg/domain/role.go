package domain

import (
	"strings"

	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

// Role is the workflow role a user acts under.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries (token claims, seed data);
// direct casting bypasses validation.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleMaker    Role = "MAKER"
	RoleChecker  Role = "CHECKER"
)

var validRoles = map[Role]bool{
	RoleCustomer: true,
	RoleMaker:    true,
	RoleChecker:  true,
}

// ParseRole constructs a Role from external input, case-insensitively.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(strings.ToUpper(s))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsStaff reports whether the role reviews applications.
func (r Role) IsStaff() bool {
	return r == RoleMaker || r == RoleChecker
}

func (r Role) String() string {
	return string(r)
}
