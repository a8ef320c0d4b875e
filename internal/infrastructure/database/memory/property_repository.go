package memory

import (
	"context"
	"sort"
	"time"

	"property-marketplace/internal/domain/property"
)

type PropertyRepository struct {
	store *Store
}

func NewPropertyRepository(store *Store) property.Repository {
	return &PropertyRepository{store: store}
}

func (r *PropertyRepository) Create(_ context.Context, p *property.Property) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.lastPropertyID++
	p.ID = s.lastPropertyID
	p.CreatedAt = now
	p.UpdatedAt = now

	s.properties[p.ID] = *p
	return nil
}

func (r *PropertyRepository) GetByID(_ context.Context, propertyID int64) (*property.Property, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[propertyID]
	if !ok {
		return nil, property.ErrPropertyNotFound
	}
	return &p, nil
}

func (r *PropertyRepository) List(_ context.Context, offset, limit int) ([]*property.Property, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.properties))
	for id := range s.properties {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return []*property.Property{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	out := make([]*property.Property, 0, len(ids))
	for _, id := range ids {
		p := s.properties[id]
		out = append(out, &p)
	}
	return out, nil
}

func (r *PropertyRepository) Update(_ context.Context, p *property.Property) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.properties[p.ID]
	if !ok {
		return property.ErrPropertyNotFound
	}

	p.OwnerID = existing.OwnerID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.properties[p.ID] = *p
	return nil
}

func (r *PropertyRepository) Delete(_ context.Context, propertyID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[propertyID]; !ok {
		return property.ErrPropertyNotFound
	}
	delete(s.properties, propertyID)
	for key := range s.interests {
		if key.propertyID == propertyID {
			delete(s.interests, key)
		}
	}
	return nil
}

func (r *PropertyRepository) AddInterest(_ context.Context, interest *property.Interest) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[interest.PropertyID]; !ok {
		return property.ErrPropertyNotFound
	}

	key := interestKey{propertyID: interest.PropertyID, userID: interest.UserID}
	if existing, ok := s.interests[key]; ok {
		*interest = existing
		return nil
	}

	s.lastInterestID++
	interest.ID = s.lastInterestID
	interest.CreatedAt = time.Now().UTC()
	s.interests[key] = *interest
	return nil
}
