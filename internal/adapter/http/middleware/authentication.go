package middleware

import (
	"log/slog"

	"storeapi/internal/adapter/http/helper"
	"storeapi/internal/core/port"
	"storeapi/internal/core/telemetry"
	"storeapi/pkg/token"

	"github.com/gin-gonic/gin"
)

const (
	IdentityKey = "x-identity"
	UserIDKey   = "x-user-id"
	UserRoleKey = "x-user-role"
)

type Authenticator struct {
	access  *token.AccessIssuer
	auth    port.AuthService
	metrics *telemetry.AppMetrics
}

func NewAuthenticator(access *token.AccessIssuer, auth port.AuthService, metrics *telemetry.AppMetrics) *Authenticator {
	return &Authenticator{
		access:  access,
		auth:    auth,
		metrics: metrics,
	}
}

// skipSilentRefresh lists routes where a missing access token must not be
// replaced from the refresh token. Refreshing during logout would resurrect
// the session being closed.
var skipSilentRefresh = map[string]bool{
	"/api/user/login":  true,
	"/api/user/logout": true,
}

// Authenticate resolves the caller's identity from the access token cookie.
// When the cookie is missing or expired it falls back to the refresh token and, if that
// still matches the stored value, silently mints a fresh access token. Every
// failure leaves the request anonymous; route guards decide whether that is
// acceptable.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := c.Cookie(token.AccessTokenCookie)

		if err == nil && accessToken != "" {
			if identity, err := a.access.ResolveIdentity(accessToken); err == nil {
				setIdentity(c, identity)
				c.Next()
				return
			}
		}

		if !skipSilentRefresh[c.Request.URL.Path] {
			a.silentRefresh(c)
		}

		c.Next()
	}
}

func (a *Authenticator) silentRefresh(c *gin.Context) {
	refreshToken, err := c.Cookie(token.RefreshTokenCookie)

	if err != nil || refreshToken == "" {
		return
	}

	identity, accessToken, err := a.auth.RefreshAccessToken(c.Request.Context(), refreshToken)

	if err != nil {
		slog.Info("Silent refresh rejected", "error", err)

		if a.metrics != nil {
			a.metrics.RecordTokenRefresh(c.Request.Context(), "rejected")
		}

		return
	}

	token.SetCookie(c.Writer, token.AccessTokenCookie, accessToken, a.access.CookieOptions(false))

	if a.metrics != nil {
		a.metrics.RecordTokenRefresh(c.Request.Context(), "success")
	}

	setIdentity(c, identity)
}

// RequireAuth aborts with 401 when the request carries no resolved identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			helper.SendUnauthorizedError(c, "Authentication required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole aborts with 403 unless the resolved identity carries the role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)

		if !ok {
			helper.SendUnauthorizedError(c, "Authentication required")
			c.Abort()
			return
		}

		if identity.Role != role {
			helper.SendForbiddenError(c, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

func setIdentity(c *gin.Context, identity *token.Identity) {
	c.Set(IdentityKey, identity)
	c.Set(UserIDKey, identity.UserID)
	c.Set(UserRoleKey, identity.Role)
}

func GetIdentity(c *gin.Context) (*token.Identity, bool) {
	value, exists := c.Get(IdentityKey)

	if !exists {
		return nil, false
	}

	identity, ok := value.(*token.Identity)

	return identity, ok
}
