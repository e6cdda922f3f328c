package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account that can upload and fetch documents through
// the API. Users are an API-layer concern; parsed documents reference people
// by display name only.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is the name shown in responses.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized into API responses.
	PasswordHash string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
