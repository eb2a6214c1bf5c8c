package service

import "errors"

var (
	ErrEmailTaken           = errors.New("account with the provided email address already exists")
	ErrEmailNotFound        = errors.New("account with the provided email address does not exist")
	ErrWrongPassword        = errors.New("wrong password")
	ErrUserNotFound         = errors.New("user not found")
	ErrAddressNotFound      = errors.New("address not found")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match the stored value")
	ErrInvalidRole          = errors.New("invalid user role")
)
