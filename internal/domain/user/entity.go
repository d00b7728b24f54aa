package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access
	RoleHR       Role = "hr"       // Corrections, leave review, payroll
	RoleEmployee Role = "employee" // Own attendance and leave only
)

// ParseRole normalises a role claim. Comparison is case-insensitive.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// IsHR reports whether the role may run HR-only operations.
func (r Role) IsHR() bool {
	role := ParseRole(string(r))
	return role == RoleAdmin || role == RoleHR
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	EmployeeID   *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
