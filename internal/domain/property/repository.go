package property

import "context"

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// Repository defines the interface for property repository operations
type Repository interface {
	Create(ctx context.Context, property *Property) error
	GetByID(ctx context.Context, propertyID int64) (*Property, error)
	List(ctx context.Context, offset, limit int) ([]*Property, error)
	Update(ctx context.Context, property *Property) error
	Delete(ctx context.Context, propertyID int64) error

	// AddInterest is idempotent per (PropertyID, UserID).
	AddInterest(ctx context.Context, interest *Interest) error
}
