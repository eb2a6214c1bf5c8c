package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "storeapi/pkg/test"

	"storeapi/internal/adapter/database/sqlite/repository"
	"storeapi/internal/adapter/http/middleware"
	"storeapi/internal/core/domain"
	"storeapi/internal/core/port"
	"storeapi/internal/core/service"
	"storeapi/internal/core/telemetry"
	"storeapi/internal/core/util"
	"storeapi/pkg/config"
	"storeapi/pkg/token"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type UserHandlerSuite struct {
	suite.Suite
	Router   *gin.Engine
	UserRepo port.UserRepository
	Access   *token.AccessIssuer
	Admin    domain.User
	Customer domain.User
}

func (s *UserHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	s.UserRepo = repository.NewUserRepository(db, telemetry.NewNoOpProbe())

	s.Access = token.NewAccessIssuer(config.JwtSettings{
		Issuer:        "storeapi",
		Audience:      "storeapi-client",
		TokenLifeTime: 15 * time.Minute,
		Secret:        "access-secret",
	})

	userHandler := NewUserHandler(service.NewUserService(s.UserRepo))

	router := gin.New()
	router.Use(fakeAuthMiddleware(s.Access))

	admin := router.Group("/api/user/user-data")
	admin.Use(middleware.RequireRole("admin"))
	{
		admin.GET("", userHandler.GetUserData)
		admin.PUT("", userHandler.UpdateUser)
	}

	s.Router = router
	s.Admin = s.createUserWithRole("admin@test.com", domain.Admin)
	s.Customer = s.createUserWithRole("customer@test.com", domain.Customer)
}

func (s *UserHandlerSuite) createUserWithRole(email string, role domain.UserRole) domain.User {
	hash, err := util.GenerateEncrypt("Sup3r$ecret")
	Expect(err).To(BeNil())

	now := time.Now()

	user, err := s.UserRepo.Create(context.Background(), domain.User{
		FirstName:    "Store",
		LastName:     "Person",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	Expect(err).To(BeNil())

	return user
}

func TestUserHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserHandlerSuite))
}

func (s *UserHandlerSuite) TestGetUserDataAsAdmin() {
	rr := s.performAs(s.Admin, "GET", "/api/user/user-data?email=customer@test.com", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(ContainSubstring("customer@test.com"))
}

func (s *UserHandlerSuite) TestGetUserDataMissingEmail() {
	rr := s.performAs(s.Admin, "GET", "/api/user/user-data", "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *UserHandlerSuite) TestGetUserDataUnknownEmail() {
	rr := s.performAs(s.Admin, "GET", "/api/user/user-data?email=ghost@test.com", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *UserHandlerSuite) TestGetUserDataAsCustomer() {
	rr := s.performAs(s.Customer, "GET", "/api/user/user-data?email=admin@test.com", "")

	Expect(rr.Code).To(Equal(http.StatusForbidden))
}

func (s *UserHandlerSuite) TestGetUserDataUnauthenticated() {
	req, _ := http.NewRequest("GET", "/api/user/user-data?email=admin@test.com", nil)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
}

func (s *UserHandlerSuite) TestUpdateUserAsAdmin() {
	body := fmt.Sprintf(`{"id": %d, "first_name": "Updated", "last_name": "Customer", "email": "customer@test.com", "role": "admin"}`, s.Customer.ID)

	rr := s.performAs(s.Admin, "PUT", "/api/user/user-data", body)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(ContainSubstring(`"first_name":"Updated"`))
	Expect(rr.Body.String()).To(ContainSubstring(`"role":"admin"`))
}

func (s *UserHandlerSuite) TestUpdateUserUnknownID() {
	body := `{"id": 9999, "first_name": "Ghost", "last_name": "User", "email": "ghost@test.com", "role": "user"}`

	rr := s.performAs(s.Admin, "PUT", "/api/user/user-data", body)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *UserHandlerSuite) TestUpdateUserInvalidRole() {
	body := fmt.Sprintf(`{"id": %d, "first_name": "Updated", "last_name": "Customer", "email": "customer@test.com", "role": "superadmin"}`, s.Customer.ID)

	rr := s.performAs(s.Admin, "PUT", "/api/user/user-data", body)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *UserHandlerSuite) performAs(user domain.User, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))

	accessToken, err := s.Access.Issue(user.ID, string(user.Role))
	Expect(err).To(BeNil())

	req.AddCookie(&http.Cookie{Name: token.AccessTokenCookie, Value: accessToken})

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}
