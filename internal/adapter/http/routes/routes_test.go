package routes_test

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
	"storeapi/internal/adapter/http/handler"
	"storeapi/internal/adapter/http/middleware"
	"storeapi/internal/adapter/http/routes"
	"storeapi/internal/core/model/request"
	"storeapi/internal/core/port"
	"storeapi/internal/core/service"
	"storeapi/internal/core/telemetry"
	"storeapi/pkg/config"
	"storeapi/pkg/token"
)

type routerNullEmailSender struct{}

func (routerNullEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	return nil
}

// RouterCacheTestSuite drives the full production router so every middleware
// runs in the same order as in the deployed server.
type RouterCacheTestSuite struct {
	suite.Suite
	router *gin.Engine
	auth   *service.AuthService
	owner  *port.LoginResult
	other  *port.LoginResult
}

func (s *RouterCacheTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	probe := telemetry.NewNoOpProbe()
	userRepo := repository.NewUserRepository(db, probe)
	addressRepo := repository.NewAddressRepository(db, probe)

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

	auth := service.NewAuthService(userRepo, access, refresh, reset, routerNullEmailSender{}, "http://localhost:3000/reset-password")
	addressSvc := service.NewAddressService(addressRepo)
	userSvc := service.NewUserService(userRepo)

	metrics := telemetry.NewAppMetrics(prometheus.NewRegistry())

	logger, err := config.NewLokiLogger("storeapi-test", "http://localhost:3100")
	Expect(err).To(BeNil())

	handlers := routes.HandlersConfig{
		AuthHandler:    handler.NewAuthHandler(auth, access, refresh),
		UserHandler:    handler.NewUserHandler(userSvc),
		AddressHandler: handler.NewAddressHandler(addressSvc, logger),
		Authenticator:  middleware.NewAuthenticator(access, auth, metrics),
	}

	appConfig := &config.AppConfig{RateLimitEnabled: false}

	s.router = routes.SetupRouterWithConfig(handlers, metrics, logger, appConfig)
	s.auth = auth

	ctx := context.Background()

	s.owner = s.createAccount(ctx, "alice@example.com")
	s.other = s.createAccount(ctx, "bob@example.com")

	_, err = addressSvc.AddAddress(ctx, s.owner.User.ID, &request.AddressRequest{
		AddressName: "Home",
		Country:     "Finland",
		City:        "Helsinki",
		Address:     "Mannerheimintie 1",
		PostalCode:  "00100",
		PhoneNumber: "+358401234567",
	})
	Expect(err).To(BeNil())
}

func (s *RouterCacheTestSuite) createAccount(ctx context.Context, email string) *port.LoginResult {
	_, err := s.auth.Registration(ctx, &request.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "Sup3r$ecret",
	})
	Expect(err).To(BeNil())

	login, err := s.auth.Login(ctx, &request.LoginRequest{Email: email, Password: "Sup3r$ecret"})
	Expect(err).To(BeNil())

	return login
}

func (s *RouterCacheTestSuite) getAddresses(accessToken string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/api/address", nil)

	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: token.AccessTokenCookie, Value: accessToken})
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)

	return recorder
}

func (s *RouterCacheTestSuite) TestAuthenticatedRequestsAreCachedPerUser() {
	first := s.getAddresses(s.owner.AccessToken, nil)
	Expect(first.Code).To(Equal(http.StatusOK))
	Expect(first.Body.String()).To(ContainSubstring("Mannerheimintie 1"))

	second := s.getAddresses(s.owner.AccessToken, nil)
	Expect(second.Code).To(Equal(http.StatusOK))
	Expect(second.Header().Get("X-Cache")).To(Equal("HIT"))
	Expect(second.Body.String()).To(ContainSubstring("Mannerheimintie 1"))
}

func (s *RouterCacheTestSuite) TestAnonymousRequestNeverServedFromCache() {
	forwarded := map[string]string{"X-Forwarded-For": "203.0.113.7"}

	primed := s.getAddresses(s.owner.AccessToken, forwarded)
	Expect(primed.Code).To(Equal(http.StatusOK))
	Expect(primed.Body.String()).To(ContainSubstring("Mannerheimintie 1"))

	anonymous := s.getAddresses("", forwarded)
	Expect(anonymous.Code).To(Equal(http.StatusUnauthorized))
	Expect(anonymous.Header().Get("X-Cache")).NotTo(Equal("HIT"))
	Expect(anonymous.Body.String()).NotTo(ContainSubstring("Mannerheimintie 1"))
}

func (s *RouterCacheTestSuite) TestCachedAddressesStayScopedToTheirOwner() {
	primed := s.getAddresses(s.owner.AccessToken, nil)
	Expect(primed.Code).To(Equal(http.StatusOK))
	Expect(primed.Body.String()).To(ContainSubstring("Mannerheimintie 1"))

	foreign := s.getAddresses(s.other.AccessToken, nil)
	Expect(foreign.Code).To(Equal(http.StatusOK))
	Expect(foreign.Header().Get("X-Cache")).NotTo(Equal("HIT"))
	Expect(foreign.Body.String()).NotTo(ContainSubstring("Mannerheimintie 1"))
}

func TestRouterCacheTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(RouterCacheTestSuite))
}
