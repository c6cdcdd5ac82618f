package model

import "time"

// Role identifies what an account can do. "user" is a food recipient;
// the value matches what the browser client sends.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleDonor Role = "donor"
	RoleUser  Role = "user"
)

// ValidRole reports whether s is one of the three known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleDonor, RoleUser:
		return true
	}
	return false
}

type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Organization string    `json:"organization,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Bcrypt hashes. AdminPasswordHash is set only for admin accounts,
	// which carry a second credential checked at the final login step.
	PasswordHash      string `json:"-"`
	AdminPasswordHash string `json:"-"`
}
