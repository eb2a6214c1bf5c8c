package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the facts embedded in every signed token. Access and refresh
// tokens carry a subject id (and role for access tokens); reset-password
// tokens carry an email instead.
type Claims struct {
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens with a single symmetric secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign stamps issuer, audience, expiry and a fresh jti onto the claims and
// returns the signed token.
func (c *Codec) Sign(claims Claims, issuer string, audience string, expiry time.Time) (string, error) {
	claims.Issuer = issuer
	claims.Audience = jwt.ClaimStrings{audience}
	claims.ExpiresAt = jwt.NewNumericDate(expiry)
	claims.IssuedAt = jwt.NewNumericDate(time.Now())
	claims.ID = uuid.New().String()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// VerifyOptions selects which registered claims Verify enforces beyond
// signature and lifetime. An empty field disables that check.
type VerifyOptions struct {
	Issuer   string
	Audience string
}

func (c *Codec) Verify(tokenString string, opts VerifyOptions) (*Claims, error) {
	claims := &Claims{}

	parserOpts := []jwt.ParserOption{}

	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrWrongAlgorithm
		}

		return c.secret, nil
	}, parserOpts...)

	if err != nil {
		return nil, classify(err)
	}

	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}

// classify maps the jwt library's error chain onto the package's taxonomy so
// callers can distinguish expired from tampered from malformed uniformly.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrWrongAlgorithm):
		return fmt.Errorf("%w: %s", ErrWrongAlgorithm, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %s", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %s", ErrWrongIssuerOrAudience, err)
	default:
		return fmt.Errorf("%w: %s", ErrMalformed, err)
	}
}
