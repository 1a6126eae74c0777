package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role assigned to a user.
type Role string

const (
	// RoleUser is the default role for newly registered users.
	RoleUser Role = "user"
	// RoleAdmin marks administrative users.
	RoleAdmin Role = "admin"
)

// User represents a registered account. The password hash never leaves the
// database layer and is excluded from JSON output.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
