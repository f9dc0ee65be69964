package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Picture   *string   `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity providers.
const (
	ProviderEmail  = "email"
	ProviderGitHub = "github"
)

// AuthIdentity links a login identity (an email address or a GitHub
// account) to a user.
type AuthIdentity struct {
	Provider     string    `json:"provider"`
	Subject      string    `json:"subject"`
	UserID       string    `json:"user_id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
