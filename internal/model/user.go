package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard account. Authorization is entirely role-driven; the
// user row only binds credentials to a role.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
