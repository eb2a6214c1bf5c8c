package domain

import (
	"time"
)

type UserRole string

const (
	Admin    UserRole = "admin"
	Customer UserRole = "user"
)

func (r UserRole) Valid() bool {
	return r == Admin || r == Customer
}

type User struct {
	ID           int
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         UserRole
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
