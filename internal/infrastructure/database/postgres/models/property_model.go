package models

import "time"

// PropertyModel represents the database model for a listing
type PropertyModel struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	OwnerID        int64      `gorm:"not null;index"`
	Owner          *UserModel `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Title          string     `gorm:"type:varchar(255);not null;index"`
	Description    string     `gorm:"type:text;not null"`
	Place          string     `gorm:"type:varchar(255);not null;index"`
	Area           string     `gorm:"type:varchar(100);not null"`
	Bedrooms       int        `gorm:"not null;default:0"`
	Bathrooms      int        `gorm:"not null;default:0"`
	HospitalNearby int        `gorm:"not null;default:0"`
	SchoolNearby   int        `gorm:"not null;default:0"`
	Price          float64    `gorm:"type:numeric(14,2);not null"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

func (PropertyModel) TableName() string {
	return "properties"
}

// InterestModel is unique per (property, user).
type InterestModel struct {
	ID         int64          `gorm:"primaryKey;autoIncrement"`
	PropertyID int64          `gorm:"not null;uniqueIndex:idx_interests_property_user"`
	Property   *PropertyModel `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	UserID     int64          `gorm:"not null;uniqueIndex:idx_interests_property_user;index"`
	User       *UserModel     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"not null"`
}

func (InterestModel) TableName() string {
	return "interests"
}

// All lists the models in dependency order for schema bootstrap.
func All() []any {
	return []any{&UserModel{}, &PropertyModel{}, &InterestModel{}}
}
