package domain

import "time"

// RoleUser is the role assigned to every synced user.
const RoleUser = "user"

// User is a row of the users table, keyed by the identity provider's id.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the principal resolved from a bearer token.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}
