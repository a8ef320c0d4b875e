package property

import (
	"time"

	domainProperty "property-marketplace/internal/domain/property"
	domainUser "property-marketplace/internal/domain/user"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// Request DTOs
type CreatePropertyRequest struct {
	Title          string  `json:"title" validate:"required,min=1,max=255"`
	Description    string  `json:"description" validate:"required,max=5000"`
	Place          string  `json:"place" validate:"required,min=1,max=255"`
	Area           string  `json:"area" validate:"required,min=1,max=100"`
	Bedrooms       int     `json:"bedrooms" validate:"min=0,max=100"`
	Bathrooms      int     `json:"bathrooms" validate:"min=0,max=100"`
	HospitalNearby int     `json:"hospital_nearby" validate:"min=0"`
	SchoolNearby   int     `json:"school_nearby" validate:"min=0"`
	Price          float64 `json:"price" validate:"gte=0"`
}

// UpdatePropertyRequest changes only the fields that are present.
type UpdatePropertyRequest struct {
	Title          *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description    *string  `json:"description" validate:"omitempty,max=5000"`
	Place          *string  `json:"place" validate:"omitempty,min=1,max=255"`
	Area           *string  `json:"area" validate:"omitempty,min=1,max=100"`
	Bedrooms       *int     `json:"bedrooms" validate:"omitempty,min=0,max=100"`
	Bathrooms      *int     `json:"bathrooms" validate:"omitempty,min=0,max=100"`
	HospitalNearby *int     `json:"hospital_nearby" validate:"omitempty,min=0"`
	SchoolNearby   *int     `json:"school_nearby" validate:"omitempty,min=0"`
	Price          *float64 `json:"price" validate:"omitempty,gte=0"`
}

type ListPropertiesRequest struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

// Response DTOs
type PropertyResponse struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Place          string    `json:"place"`
	Area           string    `json:"area"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      int       `json:"bathrooms"`
	HospitalNearby int       `json:"hospital_nearby"`
	SchoolNearby   int       `json:"school_nearby"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type PropertyListResponse struct {
	Properties []*PropertyResponse `json:"properties"`
	Skip       int                 `json:"skip"`
	Limit      int                 `json:"limit"`
}

type SellerContact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type InterestResponse struct {
	PropertyID int64          `json:"property_id"`
	Seller     *SellerContact `json:"seller"`
}

func ToPropertyResponse(p *domainProperty.Property) *PropertyResponse {
	if p == nil {
		return nil
	}
	return &PropertyResponse{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		Title:          p.Title,
		Description:    p.Description,
		Place:          p.Place,
		Area:           p.Area,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		HospitalNearby: p.HospitalNearby,
		SchoolNearby:   p.SchoolNearby,
		Price:          p.Price,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toSellerContact(u *domainUser.User) *SellerContact {
	return &SellerContact{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

// applyTo copies the present fields onto p.
func (r *UpdatePropertyRequest) applyTo(p *domainProperty.Property) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Place != nil {
		p.Place = *r.Place
	}
	if r.Area != nil {
		p.Area = *r.Area
	}
	if r.Bedrooms != nil {
		p.Bedrooms = *r.Bedrooms
	}
	if r.Bathrooms != nil {
		p.Bathrooms = *r.Bathrooms
	}
	if r.HospitalNearby != nil {
		p.HospitalNearby = *r.HospitalNearby
	}
	if r.SchoolNearby != nil {
		p.SchoolNearby = *r.SchoolNearby
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
}

// normalizePage applies the listing defaults: a negative skip starts at the
// beginning, a missing limit is DefaultListLimit and no page exceeds
// MaxListLimit.
func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return skip, limit
}
