package token

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storeapi/pkg/config"
)

// RefreshIssuer mints the long-lived refresh tokens mirrored on the user
// record. A refresh token is only as good as its match against the stored
// value: rotation revokes the predecessor even though its signature still
// verifies.
type RefreshIssuer struct {
	codec    *Codec
	settings config.JwtSettings
	lifetime time.Duration
}

func NewRefreshIssuer(settings config.JwtSettings, lifetime time.Duration) *RefreshIssuer {
	return &RefreshIssuer{
		codec:    NewCodec(settings.Secret),
		settings: settings,
		lifetime: lifetime,
	}
}

func (r *RefreshIssuer) Issue(userID int) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.Itoa(userID),
		},
	}

	return r.codec.Sign(claims, r.settings.Issuer, r.settings.Audience, time.Now().Add(r.lifetime))
}

// ResolveSubjectID enforces signature and expiry only; the equality check
// against the stored token happens at the persistence layer.
func (r *RefreshIssuer) ResolveSubjectID(tokenString string) (int, error) {
	claims, err := r.codec.Verify(tokenString, VerifyOptions{})

	if err != nil {
		slog.Error("Refresh token validation error", "error", err)
		return 0, err
	}

	userID, err := strconv.Atoi(claims.Subject)

	if err != nil {
		slog.Error("Refresh token carries no usable subject", "subject", claims.Subject)
		return 0, ErrMalformed
	}

	return userID, nil
}

func (r *RefreshIssuer) CookieOptions(remove bool) CookieOptions {
	return cookieOptions(r.lifetime, remove)
}
