package token

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storeapi/pkg/config"
)

// Identity is what a verified access token proves about the caller.
type Identity struct {
	UserID int
	Role   string
}

// AccessIssuer mints and verifies the short-lived access tokens carried in
// the access_token cookie.
type AccessIssuer struct {
	codec    *Codec
	settings config.JwtSettings
}

func NewAccessIssuer(settings config.JwtSettings) *AccessIssuer {
	return &AccessIssuer{
		codec:    NewCodec(settings.Secret),
		settings: settings,
	}
}

func (a *AccessIssuer) Issue(userID int, role string) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.Itoa(userID),
		},
	}

	return a.codec.Sign(claims, a.settings.Issuer, a.settings.Audience, time.Now().Add(a.settings.TokenLifeTime))
}

// ResolveIdentity enforces signature and expiry only. Issuer and audience
// checks are disabled for access tokens: they are short-lived and consumed by
// the same service that minted them.
func (a *AccessIssuer) ResolveIdentity(tokenString string) (*Identity, error) {
	claims, err := a.codec.Verify(tokenString, VerifyOptions{})

	if err != nil {
		slog.Error("Access token validation error", "error", err)
		return nil, err
	}

	userID, err := strconv.Atoi(claims.Subject)

	if err != nil || claims.Role == "" {
		slog.Error("Access token carries no usable identity", "subject", claims.Subject)
		return nil, ErrMalformed
	}

	return &Identity{UserID: userID, Role: claims.Role}, nil
}

func (a *AccessIssuer) CookieOptions(remove bool) CookieOptions {
	return cookieOptions(a.settings.TokenLifeTime, remove)
}
