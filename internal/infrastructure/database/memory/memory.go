// Package memory keeps users and listings in process memory. It backs the
// "memory" database driver and the tests.
package memory

import (
	"sync"

	"property-marketplace/internal/domain/property"
	"property-marketplace/internal/domain/user"
)

type interestKey struct {
	propertyID int64
	userID     int64
}

type Store struct {
	mu sync.Mutex

	users       map[int64]user.User
	userByEmail map[string]int64
	properties  map[int64]property.Property
	interests   map[interestKey]property.Interest

	lastUserID     int64
	lastPropertyID int64
	lastInterestID int64
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]user.User),
		userByEmail: make(map[string]int64),
		properties:  make(map[int64]property.Property),
		interests:   make(map[interestKey]property.Interest),
	}
}

// Health always succeeds; it mirrors the postgres connection's health check.
func (s *Store) Health() error {
	return nil
}

// InterestCount reports how many users asked about a listing.
func (s *Store) InterestCount(propertyID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.interests {
		if key.propertyID == propertyID {
			n++
		}
	}
	return n
}
