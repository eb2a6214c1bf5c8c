package token

import (
	"log/slog"
	"time"

	"storeapi/pkg/config"
)

// ResetIssuer mints password-reset tokens bound to an email. They use a
// separate secret, issuer and audience from the access-token settings, and
// unlike access tokens every registered claim is enforced on verification.
type ResetIssuer struct {
	codec    *Codec
	settings config.ResetPasswordSettings
}

func NewResetIssuer(settings config.ResetPasswordSettings) *ResetIssuer {
	return &ResetIssuer{
		codec:    NewCodec(settings.Secret),
		settings: settings,
	}
}

func (r *ResetIssuer) Issue(email string) (string, error) {
	claims := Claims{Email: email}

	return r.codec.Sign(claims, r.settings.Issuer, r.settings.Audience, time.Now().Add(r.settings.TokenLifeTime))
}

// ResolveEmail performs the full validation: signature, issuer, audience,
// lifetime and signing algorithm. ErrExpired is surfaced separately so the
// client can tell the user to request a new link.
func (r *ResetIssuer) ResolveEmail(tokenString string) (string, error) {
	claims, err := r.codec.Verify(tokenString, VerifyOptions{
		Issuer:   r.settings.Issuer,
		Audience: r.settings.Audience,
	})

	if err != nil {
		slog.Error("Reset password token validation error", "error", err)
		return "", err
	}

	if claims.Email == "" {
		slog.Error("Reset password token carries no email claim")
		return "", ErrMalformed
	}

	return claims.Email, nil
}
