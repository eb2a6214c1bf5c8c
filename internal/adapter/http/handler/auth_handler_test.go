package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "storeapi/pkg/test"

	"storeapi/internal/adapter/database/sqlite/repository"
	"storeapi/internal/adapter/http/middleware"
	"storeapi/internal/core/port"
	"storeapi/internal/core/service"
	"storeapi/internal/core/telemetry"
	"storeapi/pkg/config"
	"storeapi/pkg/token"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type recordingEmailSender struct {
	to      string
	subject string
	body    string
	sent    int
}

func (r *recordingEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	r.to = to
	r.subject = subject
	r.body = body
	r.sent++
	return nil
}

type AuthHandlerSuite struct {
	suite.Suite
	UserRepo port.UserRepository
	Router   *gin.Engine
	Reset    *token.ResetIssuer
	Email    *recordingEmailSender
}

func (s *AuthHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	s.UserRepo = repository.NewUserRepository(db, telemetry.NewNoOpProbe())

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

	s.Email = &recordingEmailSender{}
	s.Reset = reset

	authUseCase := service.NewAuthService(s.UserRepo, access, refresh, reset, s.Email, "http://localhost:3000/reset-password")
	authHandler := NewAuthHandler(authUseCase, access, refresh)
	authenticator := middleware.NewAuthenticator(access, authUseCase, nil)

	s.Router = setupAuthTestRouter(authHandler, authenticator)
}

func TestAuthHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AuthHandlerSuite))
}

func setupAuthTestRouter(authHandler *AuthHandler, authenticator *middleware.Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(authenticator.Authenticate())

	user := router.Group("/api/user")
	{
		user.POST("", authHandler.Register)
		user.POST("/login", authHandler.Login)
		user.POST("/logout", authHandler.Logout)
		user.POST("/reset-password", authHandler.ResetPassword)
		user.PUT("/change-password/:token", authHandler.ChangePassword)
	}

	return router
}

func (s *AuthHandlerSuite) register(email string) {
	body := fmt.Sprintf(`{"first_name": "Ada", "last_name": "Byron", "email": %q, "password": "Sup3r$ecret"}`, email)
	req, _ := http.NewRequest("POST", "/api/user", strings.NewReader(body))

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusCreated))
}

func (s *AuthHandlerSuite) login(email, password string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"email": %q, "password": %q}`, email, password)
	req, _ := http.NewRequest("POST", "/api/user/login", strings.NewReader(body))

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}

	return nil
}

func (s *AuthHandlerSuite) TestRegisterSuccess() {
	body := strings.NewReader(`{"first_name": "Ada", "last_name": "Byron", "email": "ada@test.com", "password": "Sup3r$ecret"}`)
	req, _ := http.NewRequest("POST", "/api/user", body)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	raw, _ := io.ReadAll(rr.Body)

	data := gin.H{}
	json.Unmarshal(raw, &data)

	newData := data["data"].(map[string]any)

	Expect(rr.Code).To(Equal(http.StatusCreated))
	Expect(newData["email"]).To(Equal("ada@test.com"))
	Expect(newData["role"]).To(Equal("user"))
}

func (s *AuthHandlerSuite) TestRegisterWeakPassword() {
	body := strings.NewReader(`{"first_name": "Ada", "last_name": "Byron", "email": "ada@test.com", "password": "password"}`)
	req, _ := http.NewRequest("POST", "/api/user", body)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(rr.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
}

func (s *AuthHandlerSuite) TestRegisterDuplicateEmail() {
	s.register("ada@test.com")

	body := strings.NewReader(`{"first_name": "Ada", "last_name": "Byron", "email": "ada@test.com", "password": "Sup3r$ecret"}`)
	req, _ := http.NewRequest("POST", "/api/user", body)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(rr.Body.String()).To(ContainSubstring("Email is already taken"))
}

func (s *AuthHandlerSuite) TestLoginSetsCookies() {
	s.register("ada@test.com")

	rr := s.login("ada@test.com", "Sup3r$ecret")

	Expect(rr.Code).To(Equal(http.StatusOK))

	resp := rr.Result()
	accessCookie := cookieByName(resp, token.AccessTokenCookie)
	refreshCookie := cookieByName(resp, token.RefreshTokenCookie)

	Expect(accessCookie).NotTo(BeNil())
	Expect(accessCookie.HttpOnly).To(BeTrue())
	Expect(refreshCookie).NotTo(BeNil())
	Expect(refreshCookie.Value).NotTo(BeEmpty())

	user, err := s.UserRepo.GetByEmail(context.Background(), "ada@test.com")
	Expect(err).To(BeNil())
	Expect(user.RefreshToken).To(Equal(refreshCookie.Value))
}

func (s *AuthHandlerSuite) TestLoginWrongPassword() {
	s.register("ada@test.com")

	rr := s.login("ada@test.com", "Wr0ng$ecret")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(rr.Body.String()).To(ContainSubstring("Wrong password"))
}

func (s *AuthHandlerSuite) TestLoginUnknownEmail() {
	rr := s.login("ghost@test.com", "Sup3r$ecret")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *AuthHandlerSuite) TestLogoutClearsSession() {
	s.register("ada@test.com")
	loginResp := s.login("ada@test.com", "Sup3r$ecret").Result()

	req, _ := http.NewRequest("POST", "/api/user/logout", nil)
	req.AddCookie(cookieByName(loginResp, token.AccessTokenCookie))

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusOK))

	resp := rr.Result()
	clearedAccess := cookieByName(resp, token.AccessTokenCookie)
	clearedRefresh := cookieByName(resp, token.RefreshTokenCookie)

	Expect(clearedAccess.Value).To(BeEmpty())
	Expect(clearedAccess.Expires.Before(time.Now())).To(BeTrue())
	Expect(clearedRefresh.Value).To(BeEmpty())
	Expect(clearedRefresh.Expires.Before(time.Now())).To(BeTrue())

	user, err := s.UserRepo.GetByEmail(context.Background(), "ada@test.com")
	Expect(err).To(BeNil())
	Expect(user.RefreshToken).To(BeEmpty())
}

func (s *AuthHandlerSuite) TestResetPasswordSendsEmail() {
	s.register("ada@test.com")

	body := strings.NewReader(`{"email": "ada@test.com"}`)
	req, _ := http.NewRequest("POST", "/api/user/reset-password", body)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(s.Email.sent).To(Equal(1))
	Expect(s.Email.to).To(Equal("ada@test.com"))
	Expect(s.Email.subject).To(Equal("Reset your password"))
	Expect(s.Email.body).To(ContainSubstring("http://localhost:3000/reset-password/"))
}

func (s *AuthHandlerSuite) TestResetPasswordUnknownEmail() {
	body := strings.NewReader(`{"email": "ghost@test.com"}`)
	req, _ := http.NewRequest("POST", "/api/user/reset-password", body)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(s.Email.sent).To(Equal(0))
}

func (s *AuthHandlerSuite) TestChangePasswordWithResetToken() {
	s.register("ada@test.com")

	resetToken, err := s.Reset.Issue("ada@test.com")
	Expect(err).To(BeNil())

	body := strings.NewReader(`{"password": "N3w$ecret!"}`)
	req, _ := http.NewRequest("PUT", "/api/user/change-password/"+resetToken, body)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusOK))

	Expect(s.login("ada@test.com", "Sup3r$ecret").Code).To(Equal(http.StatusBadRequest))
	Expect(s.login("ada@test.com", "N3w$ecret!").Code).To(Equal(http.StatusOK))
}

func (s *AuthHandlerSuite) TestChangePasswordInvalidToken() {
	body := strings.NewReader(`{"password": "N3w$ecret!"}`)
	req, _ := http.NewRequest("PUT", "/api/user/change-password/not-a-token", body)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(rr.Body.String()).To(ContainSubstring("Invalid token"))
}

func (s *AuthHandlerSuite) TestChangePasswordExpiredToken() {
	s.register("ada@test.com")

	expiredIssuer := token.NewResetIssuer(config.ResetPasswordSettings{
		Issuer:        "storeapi-reset",
		Audience:      "storeapi-reset-client",
		TokenLifeTime: -time.Minute,
		Secret:        "reset-secret",
	})

	resetToken, err := expiredIssuer.Issue("ada@test.com")
	Expect(err).To(BeNil())

	body := strings.NewReader(`{"password": "N3w$ecret!"}`)
	req, _ := http.NewRequest("PUT", "/api/user/change-password/"+resetToken, body)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(rr.Body.String()).To(ContainSubstring("Token has expired"))

	Expect(s.login("ada@test.com", "Sup3r$ecret").Code).To(Equal(http.StatusOK))
}
