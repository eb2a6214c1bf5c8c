package port

import (
	"context"

	"storeapi/internal/core/domain"
	"storeapi/internal/core/model/request"
	"storeapi/pkg/token"
)

type LoginResult struct {
	User         domain.User
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Registration(ctx context.Context, req *request.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *request.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, userID int) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (*token.Identity, string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, resetToken string, newPassword string) error
}
