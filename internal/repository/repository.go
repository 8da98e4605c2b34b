package repository

import (
	"context"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/domain"
)

// UserRepository defines the persistence operations the auth flow needs from
// the credential store.
type UserRepository interface {
	// Create inserts a new user. Returns a conflict error when a user with
	// the same email already exists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their (normalized) email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// SetRefreshToken overwrites the user's single refresh token slot. This
	// is a single-field update that bypasses any whole-document validation.
	SetRefreshToken(ctx context.Context, userID, token string) error

	// ClearRefreshToken removes the refresh token field from the user
	// record entirely.
	ClearRefreshToken(ctx context.Context, userID string) error
}
