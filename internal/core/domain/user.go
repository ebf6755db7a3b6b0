package domain

import (
	"errors"
	"time"
)

// Marketplace roles. Client and Freelancer are self-service grants;
// Administrator is seeded once at bootstrap and never self-grantable.
const (
	RoleAdmin      = "admin"
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrRoleNotSelfGrantable = errors.New("role is not self-grantable")

// SelfGrantable reports whether a caller may grant the role to themself.
func SelfGrantable(role string) bool {
	return role == RoleClient || role == RoleFreelancer
}

// User models an authenticated actor in the system. The Username doubles as
// the caller identity the ledger core operates on.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
