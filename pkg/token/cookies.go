package token

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieOptions mirror the attributes the storefront expects: HttpOnly,
// Secure, SameSite=None, expiry tied to the token lifetime.
type CookieOptions struct {
	Expires  time.Time
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

func cookieOptions(lifetime time.Duration, remove bool) CookieOptions {
	expires := time.Now().Add(lifetime)

	if remove {
		expires = time.Now().Add(-24 * time.Hour)
	}

	return CookieOptions{
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func SetCookie(w http.ResponseWriter, name string, value string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  opts.Expires,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
