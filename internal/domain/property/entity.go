package property

import "time"

// Property represents a listing owned by exactly one user
type Property struct {
	ID             int64
	OwnerID        int64
	Title          string
	Description    string
	Place          string
	Area           string
	Bedrooms       int
	Bathrooms      int
	HospitalNearby int
	SchoolNearby   int
	Price          float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Interest records that a user asked to be put in touch with a listing's owner
type Interest struct {
	ID         int64
	PropertyID int64
	UserID     int64
	CreatedAt  time.Time
}
