package memory

import (
	"context"
	"strings"
	"time"

	"property-marketplace/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) user.Repository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(u.Email))
	if _, taken := s.userByEmail[key]; taken {
		return user.ErrUserAlreadyExists
	}

	now := time.Now().UTC()
	s.lastUserID++
	u.ID = s.lastUserID
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = *u
	s.userByEmail[key] = u.ID
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.userByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, userID int64) (*user.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}
