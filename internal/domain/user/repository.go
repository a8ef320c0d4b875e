package user

import "context"

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// Repository defines the interface for user repository operations
type Repository interface {
	// Create assigns the user's ID. It returns ErrUserAlreadyExists when the
	// email is taken, including when a concurrent insert won the race.
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
}
