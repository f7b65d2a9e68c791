// Package domain contains core concepts of the messaging system.
// This file defines participants: roles, authenticated identities and profiles.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"
)

type Role string

const (
	RoleSurvivor   Role = "survivor"
	RoleCounsellor Role = "counsellor"
	RoleLegal      Role = "legal"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSurvivor, RoleCounsellor, RoleLegal, RoleAdmin:
		return true
	}
	return false
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller of an operation.
type Identity struct {
	ID   string
	Role Role
}

// Profile is the public view of an account.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Account is a stored user, including its credentials.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func (a Account) Profile() Profile {
	return Profile{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}
