package auth

import (
	"context"
	"errors"
	"fmt"

	domainUser "property-marketplace/internal/domain/user"
	appErrors "property-marketplace/pkg/errors"
)

// Resolver maps a verified token subject to the stored user.
type Resolver struct {
	users domainUser.Repository
}

func NewResolver(users domainUser.Repository) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns ErrUnknownSubject when no user has the subject email.
func (r *Resolver) Resolve(ctx context.Context, subject string) (*domainUser.User, error) {
	user, err := r.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.ErrUnknownSubject
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user, nil
}
