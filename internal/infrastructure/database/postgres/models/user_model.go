package models

import "time"

// UserModel represents the database model for User
type UserModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	FirstName      string    `gorm:"type:varchar(100);not null"`
	LastName       string    `gorm:"type:varchar(100);not null"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone          string    `gorm:"type:varchar(32)"`
	IsSeller       bool      `gorm:"default:false;not null"`
	PasswordHashed string    `gorm:"type:varchar(255);not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
