package user

import "time"

// User represents a registered identity in the domain
type User struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	IsSeller       bool
	PasswordHashed string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
