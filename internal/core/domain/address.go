package domain

import "time"

type Address struct {
	ID          int
	UserID      int
	AddressName string
	Country     string
	City        string
	Address     string
	PostalCode  string
	PhoneNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
