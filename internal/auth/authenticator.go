package auth

import (
	"context"

	"github.com/Gennadiyev/xplit-pay/internal/models"
)

// Authenticator defines the interface for authentication implementations,
// so the service layer does not care whether accounts are backed by
// passwords or something else later.
type Authenticator interface {
	// Register creates a new user account with the given email and
	// credential, returning the created user.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the user if valid.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
