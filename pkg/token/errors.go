package token

import "errors"

var (
	ErrMalformed             = errors.New("token is malformed")
	ErrInvalidSignature      = errors.New("token signature is invalid")
	ErrExpired               = errors.New("token has expired")
	ErrWrongIssuerOrAudience = errors.New("token has wrong issuer or audience")
	ErrWrongAlgorithm        = errors.New("token signed with unexpected algorithm")
)
