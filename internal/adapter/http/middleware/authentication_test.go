package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	. "storeapi/pkg/test"

	"github.com/gin-gonic/gin"

	"storeapi/internal/adapter/database/sqlite/repository"
	"storeapi/internal/adapter/http/middleware"
	"storeapi/internal/core/model/request"
	"storeapi/internal/core/port"
	"storeapi/internal/core/service"
	"storeapi/internal/core/telemetry"
	"storeapi/pkg/config"
	"storeapi/pkg/token"
)

type nullEmailSender struct{}

func (nullEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	return nil
}

type AuthenticationMiddlewareTestSuite struct {
	suite.Suite
	router  *gin.Engine
	auth    *service.AuthService
	repo    port.UserRepository
	access  *token.AccessIssuer
	refresh *token.RefreshIssuer
	user    *port.LoginResult
}

func (s *AuthenticationMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	repo := repository.NewUserRepository(db, telemetry.NewNoOpProbe())

	jwtSettings := config.JwtSettings{
		Issuer:        "storeapi",
		Audience:      "storeapi-client",
		TokenLifeTime: 15 * time.Minute,
		Secret:        "access-secret",
	}
	resetSettings := config.ResetPasswordSettings{
		Issuer:        "storeapi-reset",
		Audience:      "storeapi-reset-client",
		TokenLifeTime: 15 * time.Minute,
		Secret:        "reset-secret",
	}

	access := token.NewAccessIssuer(jwtSettings)
	refresh := token.NewRefreshIssuer(jwtSettings, 7*24*time.Hour)
	reset := token.NewResetIssuer(resetSettings)

	auth := service.NewAuthService(repo, access, refresh, reset, nullEmailSender{}, "http://localhost:3000/reset-password")

	metrics := telemetry.NewAppMetrics(prometheus.NewRegistry())
	authenticator := middleware.NewAuthenticator(access, auth, metrics)

	router := gin.New()
	router.Use(authenticator.Authenticate())

	router.GET("/api/user/user-data", middleware.RequireAuth(), func(c *gin.Context) {
		identity, _ := middleware.GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "role": identity.Role})
	})
	router.PUT("/api/user", middleware.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/api/user/logout", func(c *gin.Context) {
		if _, ok := middleware.GetIdentity(c); ok {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusNoContent)
	})

	ctx := context.Background()

	_, err := auth.Registration(ctx, &request.RegisterRequest{
		FirstName: "Nora",
		LastName:  "Quist",
		Email:     "nora@example.com",
		Password:  "Sup3r$ecret",
	})
	Expect(err).To(BeNil())

	login, err := auth.Login(ctx, &request.LoginRequest{Email: "nora@example.com", Password: "Sup3r$ecret"})
	Expect(err).To(BeNil())

	s.router = router
	s.auth = auth
	s.repo = repo
	s.access = access
	s.refresh = refresh
	s.user = login
}

func (s *AuthenticationMiddlewareTestSuite) perform(method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)

	return recorder
}

func accessCookieFrom(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == token.AccessTokenCookie {
			return cookie
		}
	}

	return nil
}

func (s *AuthenticationMiddlewareTestSuite) TestValidAccessToken() {
	recorder := s.perform("GET", "/api/user/user-data",
		&http.Cookie{Name: token.AccessTokenCookie, Value: s.user.AccessToken})

	Expect(recorder.Code).To(Equal(http.StatusOK))
	Expect(recorder.Body.String()).To(ContainSubstring(`"role":"user"`))
}

func (s *AuthenticationMiddlewareTestSuite) TestNoCookies() {
	recorder := s.perform("GET", "/api/user/user-data")

	Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
}

func (s *AuthenticationMiddlewareTestSuite) TestMissingAccessTokenTriggersSilentRefresh() {
	recorder := s.perform("GET", "/api/user/user-data",
		&http.Cookie{Name: token.RefreshTokenCookie, Value: s.user.RefreshToken})

	Expect(recorder.Code).To(Equal(http.StatusOK))

	minted := accessCookieFrom(recorder.Result())
	Expect(minted).NotTo(BeNil())

	identity, err := s.access.ResolveIdentity(minted.Value)
	Expect(err).To(BeNil())
	Expect(identity.UserID).To(Equal(s.user.User.ID))
}

func (s *AuthenticationMiddlewareTestSuite) TestExpiredAccessTokenTriggersSilentRefresh() {
	expiredIssuer := token.NewAccessIssuer(config.JwtSettings{
		Issuer:        "storeapi",
		Audience:      "storeapi-client",
		TokenLifeTime: -time.Minute,
		Secret:        "access-secret",
	})

	expired, err := expiredIssuer.Issue(s.user.User.ID, "user")
	Expect(err).To(BeNil())

	recorder := s.perform("GET", "/api/user/user-data",
		&http.Cookie{Name: token.AccessTokenCookie, Value: expired},
		&http.Cookie{Name: token.RefreshTokenCookie, Value: s.user.RefreshToken})

	Expect(recorder.Code).To(Equal(http.StatusOK))
	Expect(accessCookieFrom(recorder.Result())).NotTo(BeNil())
}

func (s *AuthenticationMiddlewareTestSuite) TestRevokedRefreshTokenStaysAnonymous() {
	err := s.auth.Logout(context.Background(), s.user.User.ID)
	Expect(err).To(BeNil())

	recorder := s.perform("GET", "/api/user/user-data",
		&http.Cookie{Name: token.RefreshTokenCookie, Value: s.user.RefreshToken})

	Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
	Expect(accessCookieFrom(recorder.Result())).To(BeNil())
}

func (s *AuthenticationMiddlewareTestSuite) TestRotatedRefreshTokenRejectsOldOne() {
	newer, err := s.auth.Login(context.Background(), &request.LoginRequest{
		Email:    "nora@example.com",
		Password: "Sup3r$ecret",
	})
	Expect(err).To(BeNil())
	Expect(newer.RefreshToken).NotTo(Equal(s.user.RefreshToken))

	recorder := s.perform("GET", "/api/user/user-data",
		&http.Cookie{Name: token.RefreshTokenCookie, Value: s.user.RefreshToken})

	Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
}

func (s *AuthenticationMiddlewareTestSuite) TestLogoutPathSkipsSilentRefresh() {
	recorder := s.perform("POST", "/api/user/logout",
		&http.Cookie{Name: token.RefreshTokenCookie, Value: s.user.RefreshToken})

	Expect(recorder.Code).To(Equal(http.StatusNoContent))
	Expect(accessCookieFrom(recorder.Result())).To(BeNil())
}

func (s *AuthenticationMiddlewareTestSuite) TestRequireRoleRejectsCustomer() {
	recorder := s.perform("PUT", "/api/user",
		&http.Cookie{Name: token.AccessTokenCookie, Value: s.user.AccessToken})

	Expect(recorder.Code).To(Equal(http.StatusForbidden))
}

func (s *AuthenticationMiddlewareTestSuite) TestRequireRoleAcceptsAdmin() {
	adminToken, err := s.access.Issue(s.user.User.ID, "admin")
	Expect(err).To(BeNil())

	recorder := s.perform("PUT", "/api/user",
		&http.Cookie{Name: token.AccessTokenCookie, Value: adminToken})

	Expect(recorder.Code).To(Equal(http.StatusOK))
}

func (s *AuthenticationMiddlewareTestSuite) TestRequireRoleWithoutIdentity() {
	recorder := s.perform("PUT", "/api/user")

	Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
}

func TestAuthenticationMiddlewareTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AuthenticationMiddlewareTestSuite))
}
