package domain

import "time"

// Role enumerates account kinds.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleStaff   Role = "STAFF"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether the role is one of the known kinds.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Account models a person: student, department staff, or administrator.
type Account struct {
	ID           string
	SystemID     string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	StudentIDNum string
	DormBlock    string

	// Pending credential-recovery window. Both empty when no reset is open.
	ResetCode       string
	ResetCodeExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor is the authorization view of an account: everything the policy
// needs to decide, nothing more.
type Actor struct {
	ID         string
	Role       Role
	Department string
}

// Actor projects the account into its authorization view.
func (a *Account) Actor() Actor {
	return Actor{ID: a.ID, Role: a.Role, Department: a.Department}
}
