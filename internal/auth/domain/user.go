package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Satisfies reports whether a holder of r may use something that requires want.
func (r Role) Satisfies(want Role) bool {
	switch want {
	case RoleCustomer:
		return r == RoleCustomer || r == RoleAdmin
	case RoleAdmin:
		return r == RoleAdmin
	}
	return false
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
